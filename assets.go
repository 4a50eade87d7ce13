// Package welcomer provides embedded assets for production builds.
package welcomer

import _ "embed"

// WelcomeTemplate is the default welcome email body. TEMPLATE_PATH overrides it at startup.
//
//go:embed templates/welcome.html
var WelcomeTemplate string
