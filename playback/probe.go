package playback

import (
	"strings"

	"github.com/coursecast/coursecast/constant"
	"github.com/coursecast/coursecast/key"
	"github.com/coursecast/coursecast/log"
	"github.com/coursecast/coursecast/player"
	"github.com/spf13/viper"
)

// CapabilityProbe reports whether el plays HLS manifests without an engine.
type CapabilityProbe func(el player.Element) bool

// NativeManifestSupport asks el directly. It never caches and never panics:
// an element that panics is treated as unsupported.
func NativeManifestSupport(el player.Element) (supported bool) {
	if el == nil {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			log.Warnf("capability probe on %T panicked: %v", el, r)
			supported = false
		}
	}()

	return el.CanPlayType(constant.MIMETypeHLS)
}

// Native manifest policies accepted by ProbeWithPolicy.
const (
	PolicyAuto   = "auto"
	PolicyAlways = "always"
	PolicyNever  = "never"
)

// ProbeWithPolicy overrides the element's answer unless policy is auto.
func ProbeWithPolicy(policy string) CapabilityProbe {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case PolicyAlways:
		return func(player.Element) bool { return true }
	case PolicyNever:
		return func(player.Element) bool { return false }
	default:
		return NativeManifestSupport
	}
}

// ProbeFromConfig applies the playback.native_manifest policy.
func ProbeFromConfig() CapabilityProbe {
	return ProbeWithPolicy(viper.GetString(key.PlaybackNativeManifest))
}
