package templates

import (
	"net/url"

	"github.com/a-h/templ"
)

func vendorURL(name string) templ.SafeURL {
	return templ.SafeURL("/vendors/" + url.PathEscape(name))
}

func exportURL(name, format string) templ.SafeURL {
	return templ.SafeURL("/api/vendors/" + url.PathEscape(name) + "/export?format=" + url.QueryEscape(format))
}
