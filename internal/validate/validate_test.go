package validate_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"ewarranty/internal/validate"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"jane@example.com", true},
		{"  jane@example.com ", true},
		{"jane@", false},
		{"", false},
		{"no-at-sign.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, ok := validate.Email(tt.in)
			qt.New(t).Assert(ok, qt.Equals, tt.ok)
		})
	}
}

func TestPhoneOptional(t *testing.T) {
	c := qt.New(t)

	got, ok := validate.Phone("")
	c.Assert(ok, qt.IsTrue)
	c.Assert(got, qt.Equals, "")

	_, ok = validate.Phone("+1 (555) 010-9999")
	c.Assert(ok, qt.IsTrue)

	_, ok = validate.Phone("call me")
	c.Assert(ok, qt.IsFalse)
}

func TestID(t *testing.T) {
	c := qt.New(t)

	n, ok := validate.ID(" 42 ")
	c.Assert(ok, qt.IsTrue)
	c.Assert(n, qt.Equals, int64(42))

	for _, bad := range []string{"", "0", "-1", "abc", "1.5"} {
		_, ok := validate.ID(bad)
		c.Assert(ok, qt.IsFalse, qt.Commentf("input %q", bad))
	}

	opt, ok := validate.OptionalID("")
	c.Assert(ok, qt.IsTrue)
	c.Assert(opt, qt.IsNil)
}

func TestPriceAndQuantity(t *testing.T) {
	c := qt.New(t)

	p, ok := validate.Price("19.99")
	c.Assert(ok, qt.IsTrue)
	c.Assert(p.String(), qt.Equals, "19.99")

	_, ok = validate.Price("-1")
	c.Assert(ok, qt.IsFalse)
	_, ok = validate.Price("free")
	c.Assert(ok, qt.IsFalse)

	q, ok := validate.Quantity("0")
	c.Assert(ok, qt.IsTrue)
	c.Assert(q, qt.Equals, 0)

	_, ok = validate.Quantity("-3")
	c.Assert(ok, qt.IsFalse)
}

func TestWarrantyStatus(t *testing.T) {
	c := qt.New(t)

	s, ok := validate.WarrantyStatus(" Accepted ")
	c.Assert(ok, qt.IsTrue)
	c.Assert(s, qt.Equals, "accepted")

	_, ok = validate.WarrantyStatus("archived")
	c.Assert(ok, qt.IsFalse)
}

func TestName(t *testing.T) {
	c := qt.New(t)

	_, ok := validate.Name("   ", 10)
	c.Assert(ok, qt.IsFalse)
	_, ok = validate.Name("Headphones", 10)
	c.Assert(ok, qt.IsTrue)
	_, ok = validate.Name("Wireless Headphones", 10)
	c.Assert(ok, qt.IsFalse)
}
