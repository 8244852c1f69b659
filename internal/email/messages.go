package email

import (
	"fmt"     // Message formatting
	"net/url" // Query escaping for links
)

// greeting personalizes the opening line when a name is known
func greeting(name string) string {
	if name == "" {
		return "Hi"
	}
	return "Hi " + name
}

// SendVerificationEmail emails the signup verification link in the background
func (m *Mailer) SendVerificationEmail(to, token, name string) {
	verifyURL := fmt.Sprintf("%s/auth/verify-email?token=%s&email=%s",
		m.APIBaseURL, url.QueryEscape(token), url.QueryEscape(to)) // Link back to this API
	subject := "Verify your email address - SchoolFanta"
	text := fmt.Sprintf(`%s,

Thanks for signing up for SchoolFanta!

To finish creating your account, verify your email address by visiting this link:

%s

This link expires in 24 hours.

If you did not create a SchoolFanta account, you can ignore this email.

---
SchoolFanta`, greeting(name), verifyURL)
	html := fmt.Sprintf(`<p>%s,</p>
<p>Thanks for signing up for SchoolFanta! To finish creating your account, verify your email address by clicking the button below.</p>
<p><a href="%s">Verify email</a></p>
<p>This link expires in 24 hours. If you did not create a SchoolFanta account, you can ignore this email.</p>`, greeting(name), verifyURL)
	m.SendAsync(to, subject, html, text) // Fire-and-forget
}

// SendWelcomeEmail emails the post-verification welcome message in the background
func (m *Mailer) SendWelcomeEmail(to, name string) {
	profileURL := m.FrontendURL + "/me" // Profile page on the front-end
	subject := "Welcome to SchoolFanta!"
	text := fmt.Sprintf(`%s,

Your SchoolFanta account has been verified!

You can now use everything on the platform:
- Draft your team
- Join the leagues
- Challenge your friends

Go to your profile: %s

---
SchoolFanta - the school fantasy league`, greeting(name), profileURL)
	html := fmt.Sprintf(`<p>%s,</p>
<p>Your SchoolFanta account has been verified!</p>
<p>You can now draft your team, join the leagues and challenge your friends.</p>
<p><a href="%s">Go to your profile</a></p>`, greeting(name), profileURL)
	m.SendAsync(to, subject, html, text) // Fire-and-forget
}

// SendEmailChangeVerification emails the change-confirmation link to the NEW
// address. This one is synchronous so the caller can roll back its token
// when the send fails.
func (m *Mailer) SendEmailChangeVerification(newEmail, token, name string) error {
	verifyURL := fmt.Sprintf("%s/me/email/verify?token=%s",
		m.APIBaseURL, url.QueryEscape(token)) // Link back to this API
	subject := "Confirm your email change - SchoolFanta"
	text := fmt.Sprintf(`%s,

You asked to change the email address on your SchoolFanta account.

To confirm this address is yours, visit this link:
%s

This link expires in 24 hours.

If you did not request an email change, you can ignore this email.

---
SchoolFanta`, greeting(name), verifyURL)
	html := fmt.Sprintf(`<p>%s,</p>
<p>You asked to change the email address on your SchoolFanta account. To confirm this address is yours, click the button below.</p>
<p><a href="%s">Confirm new email</a></p>
<p>This link expires in 24 hours. If you did not request an email change, you can ignore this email.</p>`, greeting(name), verifyURL)
	return m.Send(newEmail, subject, html, text) // Synchronous send
}
