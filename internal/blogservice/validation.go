package blogservice

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/sushihentaime/blogsphere/internal/common"
)

var (
	SlugRX = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

func init() {
	common.RegisterRule("slug", "must only contain lowercase letters, numbers and single hyphens", SlugRX.MatchString)
	common.RegisterRule("imageref", "must be a valid URI or path", isImageRef)
}

// isImageRef accepts absolute http(s) URLs as well as relative or rooted paths.
func isImageRef(s string) bool {
	if strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "":
		return u.Path != ""
	case "http", "https":
		return u.Host != ""
	default:
		return false
	}
}

// Content is sanitized before it is checked so the stored value meets the rules.
func validateCreate(v *common.Validator, req *CreateBlogRequest) {
	req.Content = sanitizeMarkdown(req.Content)
	v.Struct(req)
}

func validateUpdate(v *common.Validator, req *UpdateBlogRequest) {
	if req.Content != nil {
		content := sanitizeMarkdown(*req.Content)
		req.Content = &content
	}
	v.Struct(req)
}

func validateLimit(v *common.Validator, limit int) {
	v.Check(limit > 0 && limit <= MaxLatestLimit, "limit", fmt.Sprintf("must be between 1 and %d", MaxLatestLimit))
}
