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

// Package mailer sends transactional email using the MailJet API.
package mailer

import (
	"fmt"
	"log"
	"sync"

	mailjet "github.com/mailjet/mailjet-apiv3-go"
)

const defaultSender = "no-reply@coastpress.net"

// Mailer represents a mailer that uses the MailJet API to send email.
type Mailer struct {
	mutex      sync.Mutex // Lock access.
	sender     string     // Sender email address.
	publicKey  string     // Public key for accessing the MailJet API.
	privateKey string     // Private key for accessing the MailJet API.
}

// New creates a mailer with the supplied options. See WithSender and
// WithSecrets for a description of the various options. Secrets are required
// to send actual email using the MailJet API, but can be omitted during
// testing and development, in which case messages are logged instead of sent.
func New(options ...Option) (*Mailer, error) {
	m := &Mailer{sender: defaultSender}

	for i, opt := range options {
		err := opt(m)
		if err != nil {
			return nil, fmt.Errorf("could not apply option # %d: %w", i, err)
		}
	}

	return m, nil
}

// Send sends an email message to the given recipient. Without API keys the
// message is logged rather than sent, which is the desired behavior in
// standalone mode.
func (m *Mailer) Send(recipient, subject, msg string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.publicKey == "" || m.privateKey == "" {
		log.Printf("mailer has no keys; not sending %q to %s: %s", subject, recipient, msg)
		return nil
	}

	clt := mailjet.NewMailjetClient(m.publicKey, m.privateKey)
	info := []mailjet.InfoMessagesV31{{
		From:     &mailjet.RecipientV31{Email: m.sender},
		To:       &mailjet.RecipientsV31{mailjet.RecipientV31{Email: recipient}},
		Subject:  subject,
		TextPart: msg,
	}}

	msgs := mailjet.MessagesV31{Info: info}
	_, err := clt.SendMailV31(&msgs)
	if err != nil {
		return fmt.Errorf("could not send mail: %w", err)
	}

	return nil
}
