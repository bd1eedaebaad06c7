// Package ci detects whether the process runs under a continuous integration
// service.
package ci

import (
	"os"
	"strings"
)

// Variables set by at least one CI service. Any of them being set to a value
// other than "false" means the process runs in CI.
var envVars = []string{
	"CI",
	"CONTINUOUS_INTEGRATION",
	"BUILD_NUMBER",
	"BUILD_ID",
	"RUN_ID",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
	"TRAVIS",
	"JENKINS_URL",
	"TEAMCITY_VERSION",
	"BUILDKITE",
	"TF_BUILD",
	"CODEBUILD_BUILD_ID",
}

// Mocked for unit testing.
var lookupEnv = os.LookupEnv

// IsCI returns whether the process runs under a CI service.
func IsCI() bool {
	for _, name := range envVars {
		val, ok := lookupEnv(name)
		if ok && val != "" && !strings.EqualFold(val, "false") {
			return true
		}
	}
	return false
}
