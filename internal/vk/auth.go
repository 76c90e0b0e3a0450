package vk

import (
	"net/url"
	"strconv"
)

// AuthorizeBaseURL is the OAuth dialog used by the implicit flow.
const AuthorizeBaseURL = "https://oauth.vk.com/authorize"

// AuthScope lists the permissions a posting token needs.
const AuthScope = "photos,groups,wall,offline"

// AuthorizeURL builds the implicit-flow URL an operator opens in a browser.
// After consent the token appears in the redirect as access_token.
func AuthorizeURL(clientID int, apiVersion float64) (string, error) {
	if clientID <= 0 {
		return "", ErrClientIDRequired
	}

	params := url.Values{}
	params.Set("client_id", strconv.Itoa(clientID))
	params.Set("display", "page")
	params.Set("scope", AuthScope)
	params.Set("response_type", "token")
	params.Set("v", Credentials{APIVersion: apiVersion}.Version())

	return AuthorizeBaseURL + "?" + params.Encode(), nil
}
