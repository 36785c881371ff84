package echo360

import (
	"github.com/andersbetner/anuautomation/util"
)

// Store remembers the lectures downloaded per course
type Store struct {
	file    string
	Courses map[int][]string
}

// LoadStore reads the store in file, a missing file is an empty store
func LoadStore(file string) (*Store, error) {
	s := &Store{}
	s.file = file
	s.Courses = make(map[int][]string)
	_, err := util.LoadJSON(file, &s.Courses)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Has returns true if the lecture is downloaded
func (s *Store) Has(courseID int, uuid string) bool {
	for _, u := range s.Courses[courseID] {
		if u == uuid {
			return true
		}
	}
	return false
}

// Add marks a lecture as downloaded
func (s *Store) Add(courseID int, uuid string) {
	if !s.Has(courseID, uuid) {
		s.Courses[courseID] = append(s.Courses[courseID], uuid)
	}
}

// Save writes the store
func (s *Store) Save() error {
	return util.SaveJSON(s.file, s.Courses)
}

// Subscription is a course to download lectures for
type Subscription struct {
	Title string `json:"title"`
}

// LoadSubscriptions reads the subscribed courses. ok is false when file
// doesn't exist.
func LoadSubscriptions(file string) (subs map[int]Subscription, ok bool, err error) {
	subs = make(map[int]Subscription)
	ok, err = util.LoadJSON(file, &subs)

	return subs, ok, err
}

// SaveSubscriptions writes the subscribed courses
func SaveSubscriptions(file string, subs map[int]Subscription) error {
	return util.SaveJSON(file, subs)
}
