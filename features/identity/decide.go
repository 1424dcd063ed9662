package identity

import (
	"fmt"

	"github.com/AntonStoeckl/library-loans-go/lending"
)

// ChangeStatus returns a copy of the reader with the new status.
// A person that is not a reader is reported as ErrNotFound.
func ChangeStatus(person lending.Person, status lending.ReaderStatus) (lending.Person, error) {
	status, err := lending.ParseReaderStatus(string(status))
	if err != nil {
		return person, err
	}

	return withReaderProfile(person, func(profile *lending.ReaderProfile) {
		profile.Status = status
	})
}

// ChangeZone returns a copy of the reader assigned to zone.
func ChangeZone(person lending.Person, zone lending.Zone) (lending.Person, error) {
	zone, err := lending.ParseZone(string(zone))
	if err != nil {
		return person, err
	}

	return withReaderProfile(person, func(profile *lending.ReaderProfile) {
		profile.Zone = zone
	})
}

func withReaderProfile(person lending.Person, change func(*lending.ReaderProfile)) (lending.Person, error) {
	if !person.IsReader() {
		return person, fmt.Errorf("%w: no reader with id %s", lending.ErrNotFound, person.ID)
	}

	profile := *person.Reader
	change(&profile)
	person.Reader = &profile

	return person, nil
}
