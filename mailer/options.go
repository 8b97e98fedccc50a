/*
LICENSE
  Copyright (C) 2026 the CoastPress project

  This is free software: you can redistribute it and/or modify it
  under the terms of the GNU General Public License as published by
  the Free Software Foundation, either version 3 of the License, or
  (at your option) any later version.

  It is distributed in the hope that it will be useful,
  but WITHOUT ANY WARRANTY; without even the implied warranty of
  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
  GNU General Public License for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt. If not, see http://www.gnu.org/licenses/.
*/

package mailer

import "errors"

// Option is a functional option supplied to New.
type Option func(*Mailer) error

// WithSender sets the sender email address.
func WithSender(sender string) Option {
	return func(m *Mailer) error {
		if sender == "" {
			return errors.New("empty sender")
		}
		m.sender = sender
		return nil
	}
}

// WithSecrets applies the secrets necessary for sending email,
// notably the public and private mail API keys.
func WithSecrets(secrets map[string]string) Option {
	return func(m *Mailer) error {
		var ok bool
		m.publicKey, ok = secrets["mailjetPublicKey"]
		if !ok {
			return errors.New("mailjetPublicKey secret not found")
		}
		m.privateKey, ok = secrets["mailjetPrivateKey"]
		if !ok {
			return errors.New("mailjetPrivateKey secret not found")
		}
		return nil
	}
}
