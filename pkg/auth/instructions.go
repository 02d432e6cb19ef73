package auth

import (
	"fmt"
	"io"
	"strings"
)

// WriteCookieGuide explains how to copy the csrftoken and sessionid cookies
// out of a logged-in browser
func WriteCookieGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "🍪 INSTAGRAM SESSION COOKIES")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "instagraph can reuse the session of a browser that is already logged in.")
	fmt.Fprintln(w, "It needs two cookies from https://www.instagram.com:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "   csrftoken   32-character token, e.g. YTQHujAgMhyveLvvuwCfw9CPI8ROAHoy")
	fmt.Fprintln(w, "   sessionid   long value containing %3A, e.g. 12345678%3Aabcdef...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "1. Log in at https://www.instagram.com and open the developer tools (F12).")
	fmt.Fprintln(w, "2. Chrome/Edge: Application tab. Firefox: Storage tab.")
	fmt.Fprintln(w, "3. Expand Cookies and select https://www.instagram.com.")
	fmt.Fprintln(w, "4. Copy the values of csrftoken and sessionid, without quotes.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Then either pass them directly:")
	fmt.Fprintln(w, "   instagraph timeline --csrf-token <csrftoken> --session-id <sessionid>")
	fmt.Fprintln(w, "or save them under a name and use --account afterwards:")
	fmt.Fprintln(w, "   instagraph login --csrf-token <csrftoken> --session-id <sessionid> --save me")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "⚠️  These cookies give full access to the account. Never share them.")
	fmt.Fprintln(w, rule)
}
