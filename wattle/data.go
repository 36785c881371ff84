package wattle

import (
	"net/url"
	"time"
)

// Course is a course the user is enrolled in
type Course struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Signup is a group sign up activity in a course
type Signup struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// GroupSlot is a row in a group sign up table
type GroupSlot struct {
	Ident       string     `json:"ident"`
	Description []string   `json:"description"`
	Members     int        `json:"members"`
	Capacity    int        `json:"capacity"`
	Form        url.Values `json:"-"`
	SignedUp    bool       `json:"signed_up"`
}

// GroupDetails is a group sign up page. Opens is zero when the page
// doesn't say when sign up opens.
type GroupDetails struct {
	Opens time.Time   `json:"opens"`
	Slots []GroupSlot `json:"slots"`
}

// Full returns true if the slot has a capacity and it's reached
func (g GroupSlot) Full() bool {
	return g.Capacity > 0 && g.Members >= g.Capacity
}

// CanJoin returns true if the slot has a join button
func (g GroupSlot) CanJoin() bool {
	return g.Form != nil && !g.SignedUp
}
