package store

import (
	"errors"
	"time"
)

const profileKey = "profile"

// Profile is what the client remembers between runs.
type Profile struct {
	Name      string
	LastRoom  string
	UpdatedAt time.Time
}

// LoadProfile returns the saved profile, or the zero Profile if none was
// saved yet.
func LoadProfile(s *Store) (Profile, error) {
	var p Profile
	if err := s.Get(profileKey, &p); errors.Is(err, ErrNotFound) {
		return Profile{}, nil
	} else if err != nil {
		return Profile{}, err
	}
	return p, nil
}

func SaveProfile(s *Store, p Profile) error {
	p.UpdatedAt = time.Now().UTC()
	return s.Set(profileKey, p)
}

// ForgetProfile removes the saved profile.
func ForgetProfile(s *Store) error {
	return s.Delete(profileKey)
}
