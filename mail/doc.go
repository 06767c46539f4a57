// Package mail sends plain-text email to a contact over SMTP.
//
// A Sender is built from a Config naming the submission host, the sender
// address and optional credentials. Send validates recipients with net/mail,
// writes an RFC 5322 message with CRLF line endings, and submits it with
// github.com/emersion/go-smtp. Credentials are sent with SASL PLAIN, so use
// TLS against anything that is not local.
//
// Minimal example:
//
//	sender := mail.NewSender(mail.Config{
//		Host: "smtp.example.com",
//		Port: 465,
//		TLS:  true,
//		From: "Me <me@example.com>",
//	})
//	id, err := sender.Send(ctx, mail.Message{
//		To:       []string{contact.Email},
//		Subject:  "Hello",
//		TextBody: "Hi " + contact.FirstName,
//	})
package mail
