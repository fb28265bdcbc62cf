package scene

import (
	"strconv"
	"time"

	"honnef.co/go/curve"
)

// arclenAccuracy is the arc length tolerance in canvas units.
const arclenAccuracy = 0.01

// SetCurve commits a cubic Bézier as the element's path. d is its path data
// as written to the document.
func (e *Element) SetCurve(c curve.CubicBez, d string) *Element {
	e.SetAttr("d", d)
	e.curve = &c
	return e
}

// Curve returns the committed curve of the element.
func (e *Element) Curve() (curve.CubicBez, bool) {
	if e.curve == nil {
		return curve.CubicBez{}, false
	}
	return *e.curve, true
}

// MeasureLength returns the arc length of the curve committed with
// [Element.SetCurve]. ok is false for elements without a curve.
func MeasureLength(el *Element) (length float64, ok bool) {
	c, ok := el.Curve()
	if !ok {
		return 0, false
	}
	return c.Arclen(arclenAccuracy), true
}

// AnimateDash sets up a stroke reveal: the dash pattern is as long as the
// path and its offset animates from length to 0.
func AnimateDash(el *Element, length float64, delay, duration time.Duration) {
	l := strconv.FormatFloat(length, 'f', 2, 64)
	el.SetStyle("stroke-dasharray", l+" "+l)
	el.Animate(Transition{
		Property: "stroke-dashoffset",
		Style:    true,
		From:     l,
		To:       "0",
		Delay:    delay,
		Duration: duration,
		Easing:   "ease-out",
	})
}
