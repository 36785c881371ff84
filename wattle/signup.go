package wattle

import (
	"regexp"

	log "github.com/sirupsen/logrus"
)

// SignupByIdent joins the slot with identifier ident. It returns true once
// the page shows the user in that slot, so callers loop until then.
func (c *Client) SignupByIdent(signupID int, ident string) (bool, error) {
	return c.signup(signupID, func(slot GroupSlot) bool {
		return slot.Ident == ident
	})
}

// SignupByPattern is SignupByIdent for the first slot whose identifier or a
// description line matches re
func (c *Client) SignupByPattern(signupID int, re *regexp.Regexp) (bool, error) {
	return c.signup(signupID, func(slot GroupSlot) bool {
		if re.MatchString(slot.Ident) {
			return true
		}
		for _, d := range slot.Description {
			if re.MatchString(d) {
				return true
			}
		}
		return false
	})
}

func (c *Client) signup(signupID int, match func(GroupSlot) bool) (bool, error) {
	details, err := c.GroupDetails(signupID)
	if err != nil {
		return false, err
	}
	for _, slot := range details.Slots {
		if !match(slot) {
			continue
		}
		if slot.SignedUp {
			log.WithFields(log.Fields{"signup": signupID, "slot": slot.Ident}).Info("Already signed up")
			return true, nil
		}
		if slot.CanJoin() {
			return false, c.SendSignup(signupID, slot.Form)
		}
		log.WithFields(log.Fields{"signup": signupID, "slot": slot.Ident}).Debug("Slot can't be joined yet")
		return false, nil
	}

	return false, nil
}

// FirstSignup returns the first group sign up of a course, nil if there is
// none yet
func (c *Client) FirstSignup(courseID int) (*Signup, error) {
	signups, err := c.CourseSignups(courseID)
	if err != nil || len(signups) == 0 {
		return nil, err
	}

	return &signups[0], nil
}
