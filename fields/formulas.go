package fields

import "github.com/notargets/amrkit/mesh"

type definition struct {
	name string
	fn   Func
}

func field(name string) Func {
	return func(c *Calc) *mesh.BlockArray { return c.Field(name) }
}

// radial projects the vector (vx, vy, vz) onto the position unit vector
func radial(vx, vy, vz string) Func {
	return func(c *Calc) *mesh.BlockArray {
		dot := c.Dot3(c.Field(vx), c.Field(vy), c.Field(vz), c.Field("x"), c.Field("y"), c.Field("z"))
		return c.Div(dot, c.Field("r"))
	}
}

func product(names ...string) Func {
	return func(c *Calc) *mesh.BlockArray {
		out := c.Field(names[0])
		for _, name := range names[1:] {
			out = c.Mul(out, c.Field(name))
		}
		return out
	}
}

func ratio(num, den string) Func {
	return func(c *Calc) *mesh.BlockArray { return c.Div(c.Field(num), c.Field(den)) }
}

func sqrtOf(name string) Func {
	return func(c *Calc) *mesh.BlockArray { return c.Sqrt(c.Field(name)) }
}

func squares(x, y, z string) Func {
	return func(c *Calc) *mesh.BlockArray {
		return c.Dot3(c.Field(x), c.Field(y), c.Field(z), c.Field(x), c.Field(y), c.Field(z))
	}
}

// cross returns a*bv - b*av, one component of a position x velocity product
func cross(a, bv, b, av string) Func {
	return func(c *Calc) *mesh.BlockArray {
		return c.Sub(c.Mul(c.Field(a), c.Field(bv)), c.Mul(c.Field(b), c.Field(av)))
	}
}

// kineticFlux is 0.5 dens vtot^2 times the given radial velocity
func kineticFlux(vel string) Func {
	return func(c *Calc) *mesh.BlockArray {
		return c.Scale(product("dens", "vtot^2", vel)(c), 0.5)
	}
}

// Hydrodynamic fields over dens, velx, vely, velz and eint
var hydroFields = []definition{
	{"zeros", func(c *Calc) *mesh.BlockArray { return c.Const(0) }},
	{"ones", func(c *Calc) *mesh.BlockArray { return c.Const(1) }},
	{"vol", product("dx", "dy", "dz")},
	{"r", func(c *Calc) *mesh.BlockArray { return c.Sqrt(squares("x", "y", "z")(c)) }},
	{"mass", product("vol", "dens")},
	{"pres", func(c *Calc) *mesh.BlockArray { return c.Scale(c.Field("eint"), c.Gamma()-1) }},
	{"temp", func(c *Calc) *mesh.BlockArray {
		return c.Div(c.Scale(c.Field("eint"), c.Gamma()-1), c.Field("dens"))
	}},
	{"entropy", func(c *Calc) *mesh.BlockArray {
		return c.Div(c.Field("pres"), c.Pow(c.Field("dens"), c.Gamma()))
	}},
	{"c_s^2", func(c *Calc) *mesh.BlockArray {
		return c.Scale(c.Div(c.Field("pres"), c.Field("dens")), c.Gamma())
	}},
	{"c_s", sqrtOf("c_s^2")},
	{"momx", product("velx", "dens")},
	{"momy", product("vely", "dens")},
	{"momz", product("velz", "dens")},
	{"velr", radial("velx", "vely", "velz")},
	{"momr", product("velr", "dens")},
	{"velin", func(c *Calc) *mesh.BlockArray { return c.MinScalar(c.Field("velr"), 0) }},
	{"velout", func(c *Calc) *mesh.BlockArray { return c.MaxScalar(c.Field("velr"), 0) }},
	{"vtot^2", squares("velx", "vely", "velz")},
	{"vtot", sqrtOf("vtot^2")},
	{"vrot", func(c *Calc) *mesh.BlockArray {
		return c.Sqrt(c.Sub(c.Field("vtot^2"), c.Square(c.Field("velr"))))
	}},
	{"momtot", product("dens", "vtot")},
	{"ekin", func(c *Calc) *mesh.BlockArray { return c.Scale(product("dens", "vtot^2")(c), 0.5) }},
	{"etot", func(c *Calc) *mesh.BlockArray { return c.Add(c.Field("ekin"), c.Field("eint")) }},
	{"amx", cross("y", "velz", "z", "vely")},
	{"amy", cross("z", "velx", "x", "velz")},
	{"amz", cross("x", "vely", "y", "velx")},
	{"amtot", product("r", "vrot")},
	{"mflxr", product("dens", "velr")},
	{"mflxrin", product("dens", "velin")},
	{"mflxrout", product("dens", "velout")},
	{"momflxr", func(c *Calc) *mesh.BlockArray { return c.Mul(c.Field("dens"), c.Square(c.Field("velr"))) }},
	{"momflxrin", product("dens", "velr", "velin")},
	{"momflxrout", product("dens", "velr", "velout")},
	{"ekflxr", kineticFlux("velr")},
	{"ekflxrin", kineticFlux("velin")},
	{"ekflxrout", kineticFlux("velout")},
}

// Magnetic fields over the cell-centered bcc1, bcc2, bcc3
var mhdFields = []definition{
	{"bccx", field("bcc1")},
	{"bccy", field("bcc2")},
	{"bccz", field("bcc3")},
	{"bccr", radial("bccx", "bccy", "bccz")},
	{"btot^2", squares("bccx", "bccy", "bccz")},
	{"btot", sqrtOf("btot^2")},
	{"brot", func(c *Calc) *mesh.BlockArray {
		return c.Sqrt(c.Sub(c.Field("btot^2"), c.Square(c.Field("bccr"))))
	}},
	{"v_A^2", ratio("btot^2", "dens")},
	{"v_A", sqrtOf("v_A^2")},
	{"beta", ratio("pres", "btot^2")},
}
