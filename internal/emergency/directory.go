// Package emergency holds the static emergency dial directory. There is no
// state and no error path beyond an unknown number or an OS-level dial
// failure reported by the injected Dialer.
package emergency

import (
	"errors"
	"fmt"
	"log"

	"graminhealth/pkg"
)

// ErrUnknownNumber rejects dial requests for numbers outside the directory.
var ErrUnknownNumber = errors.New("emergency: unknown number")

// Dialer places a phone call. On a device this maps to the OS dial
// action; tests inject a recorder.
type Dialer interface {
	Dial(number string) error
}

// IntentDialer acknowledges dial requests by recording the intent in the
// service log. It is the default on a server, where no OS dial action
// exists: the client receives the acknowledgement and places the call
// itself.
type IntentDialer struct {
	Logger *log.Logger
}

// Dial logs the intent and succeeds.
func (d *IntentDialer) Dial(number string) error {
	d.Logger.Printf("dial intent acknowledged for %s", number)
	return nil
}

// DefaultContacts are the national emergency numbers for the target
// deployment: 102 for ambulance services, 108 for emergency/disaster
// response.
var DefaultContacts = []pkg.EmergencyContact{
	{Number: "102", Label: "Ambulance", SubLabel: "For Pregnancy/Accidents"},
	{Number: "108", Label: "Emergency Services", SubLabel: "Disaster Management"},
}

// Directory maps emergency numbers to dial actions.
type Directory struct {
	contacts []pkg.EmergencyContact
	dialer   Dialer
}

// New constructs a Directory. Passing no contacts installs the defaults;
// passing a nil dialer installs an IntentDialer so dial requests always
// have a working sink.
func New(dialer Dialer, contacts ...pkg.EmergencyContact) *Directory {
	if len(contacts) == 0 {
		contacts = DefaultContacts
	}
	if dialer == nil {
		dialer = &IntentDialer{Logger: log.New(log.Writer(), "[EMERGENCY] ", log.LstdFlags)}
	}
	return &Directory{contacts: contacts, dialer: dialer}
}

// Contacts returns the directory entries in display order.
func (d *Directory) Contacts() []pkg.EmergencyContact {
	out := make([]pkg.EmergencyContact, len(d.contacts))
	copy(out, d.contacts)
	return out
}

// Dial places a call to one of the directory numbers. Numbers outside the
// directory are rejected; this endpoint is not a general-purpose dialer.
func (d *Directory) Dial(number string) error {
	for _, c := range d.contacts {
		if c.Number == number {
			return d.dialer.Dial(number)
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownNumber, number)
}
