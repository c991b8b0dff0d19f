package models

import "encoding/json"

// MembershipSet is an ordered set of entry identifiers (Featured, Event).
// Each identifier appears at most once. The zero value is an empty set.
type MembershipSet struct {
	ids []string
}

func NewMembershipSet(ids ...string) MembershipSet {
	var s MembershipSet
	for _, id := range ids {
		if !s.Contains(id) {
			s.ids = append(s.ids, id)
		}
	}
	return s
}

func (s MembershipSet) Contains(id string) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Toggle flips the presence of id and reports whether it is now a member.
func (s *MembershipSet) Toggle(id string) bool {
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
			return false
		}
	}
	s.ids = append(s.ids, id)
	return true
}

// IDs returns a copy of the members in insertion order.
func (s MembershipSet) IDs() []string {
	return append([]string{}, s.ids...)
}

func (s MembershipSet) Len() int { return len(s.ids) }

func (s MembershipSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

func (s *MembershipSet) UnmarshalJSON(b []byte) error {
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return err
	}
	*s = NewMembershipSet(ids...)
	return nil
}
