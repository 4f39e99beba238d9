package utils

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hilthontt/chatroom/internal/infrastructure/json"
)

// FormBinder is implemented by request types that can also be filled from an
// HTML form.
type FormBinder interface {
	BindForm(values url.Values)
}

// DecodeRequest fills dst from a JSON body or from form values, depending on
// the request content type, and validates it.
func DecodeRequest(r *http.Request, dst FormBinder) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return json.ReadValid(r, dst)
	}

	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("malformed form body: %w", err)
	}
	dst.BindForm(r.PostForm)

	return json.Validate.Struct(dst)
}

// FormString returns the raw form value for key, or nil when the form does
// not carry the key.
func FormString(values url.Values, key string) *string {
	if _, ok := values[key]; !ok {
		return nil
	}
	v := values.Get(key)
	return &v
}

// RedirectWithError sends an HTML client back to path with a flash message.
func RedirectWithError(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(msg), http.StatusSeeOther)
}
