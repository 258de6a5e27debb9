package catalog

// Feature identifies a product capability that can be enabled per organization
type Feature string

const (
	FeatureBlog          Feature = "blog"
	FeatureCRM           Feature = "crm"
	FeatureEmailing      Feature = "emailing"
	FeatureShop          Feature = "shop"
	FeatureWhatsApp      Feature = "whatsapp"
	FeatureSMS           Feature = "sms"
	FeatureSocialMedia   Feature = "social_media"
	FeatureStock         Feature = "stock"
	FeatureMultiLocation Feature = "multi_location"
	FeatureMultiUser     Feature = "multi_user"
)

// allFeatures is the canonical feature order used for iteration and persistence
var allFeatures = []Feature{
	FeatureBlog,
	FeatureCRM,
	FeatureEmailing,
	FeatureShop,
	FeatureWhatsApp,
	FeatureSMS,
	FeatureSocialMedia,
	FeatureStock,
	FeatureMultiLocation,
	FeatureMultiUser,
}

// Features returns every product feature in canonical order
func Features() []Feature {
	out := make([]Feature, len(allFeatures))
	copy(out, allFeatures)
	return out
}

// IsValidFeature reports whether f names a known product feature
func IsValidFeature(f Feature) bool {
	for _, known := range allFeatures {
		if known == f {
			return true
		}
	}
	return false
}

// FeatureMatrix maps each product feature to its enabled state
type FeatureMatrix map[Feature]bool

// NewFeatureMatrix returns a matrix with every feature disabled
func NewFeatureMatrix() FeatureMatrix {
	m := make(FeatureMatrix, len(allFeatures))
	for _, f := range allFeatures {
		m[f] = false
	}
	return m
}

// Clone returns an independent copy of the matrix
func (m FeatureMatrix) Clone() FeatureMatrix {
	out := make(FeatureMatrix, len(m))
	for f, enabled := range m {
		out[f] = enabled
	}
	return out
}

// Enabled reports whether the feature is enabled. Unknown features are
// always disabled.
func (m FeatureMatrix) Enabled(f Feature) bool {
	return m[f]
}

// EnabledFeatures returns the enabled features in canonical order
func (m FeatureMatrix) EnabledFeatures() []Feature {
	var out []Feature
	for _, f := range allFeatures {
		if m[f] {
			out = append(out, f)
		}
	}
	return out
}
