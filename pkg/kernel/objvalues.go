package kernel

import "strings"

type CompanyName string

type RoleTitle string

type AttachmentKey string

type Email string

// IsValid performs a minimal structural check, full validation is the
// transport layer's job
func (e Email) IsValid() bool {
	s := string(e)
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && !strings.Contains(s[at+1:], "@")
}

func (e Email) Normalized() Email {
	return Email(strings.ToLower(strings.TrimSpace(string(e))))
}
