package orchestrator

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/oci-ccon/ccon/pkg/ccerr"
	"github.com/oci-ccon/ccon/pkg/config"
)

var configJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// configBytes re-serializes cfg for transport to the container side over
// the one-shot config pipe, rather than re-reading the original file: the
// host may have received the document via --config-string with no backing
// path, and round-tripping through the parsed form also drops unknown keys
// and stray whitespace the child has no reason to see.
func configBytes(cfg *config.Config) ([]byte, error) {
	raw, err := configJSON.Marshal(cfg)
	if err != nil {
		return nil, ccerr.New(ccerr.Configuration, "re-encode config for container: %v", err)
	}
	return raw, nil
}
