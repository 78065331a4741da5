package messaging

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// Kind classifies a failed remote call. Callers branch on the kind
// instead of inspecting transport errors.
type Kind int

const (
	KindNone Kind = iota
	// KindPermission: the API rejected the call for a missing capability.
	KindPermission
	// KindNotFound: the target message or channel no longer exists.
	KindNotFound
	// KindTransport: any other remote or network fault.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindPermission:
		return "permission_denied"
	case KindNotFound:
		return "not_found"
	default:
		return "transport_failure"
	}
}

// ErrEmptyMessage is returned by Send when neither content nor an embed
// was supplied. No remote call is made in that case.
var ErrEmptyMessage = errors.New("messaging: message needs content or an embed")

// ErrWindowTooLarge is wrapped by WindowError for errors.Is checks.
var ErrWindowTooLarge = errors.New("messaging: purge window exceeds bulk-delete maximum")

// Classify maps an error from the platform SDK to a Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		switch rest.Response.StatusCode {
		case http.StatusForbidden:
			return KindPermission
		case http.StatusNotFound:
			return KindNotFound
		}
	}
	return KindTransport
}
