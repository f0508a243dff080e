package middleware

import (
	"net/http"
	"strings"
)

const methodOverrideField = "_method"

var overridableMethods = map[string]bool{
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// MethodOverride lets HTML forms reach PUT, PATCH and DELETE routes by posting
// a _method value in the query string or the urlencoded body. It has to wrap
// the router, since routes are matched on the rewritten method.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			method := r.URL.Query().Get(methodOverrideField)
			if method == "" && isURLEncodedForm(r) {
				method = r.PostFormValue(methodOverrideField)
			}

			method = strings.ToUpper(strings.TrimSpace(method))
			if overridableMethods[method] {
				r.Method = method
			}
		}

		next.ServeHTTP(w, r)
	})
}

func isURLEncodedForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(strings.ToLower(ct), "application/x-www-form-urlencoded")
}
