package assets

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxAssetNameLength bounds asset names, which become file names.
const MaxAssetNameLength = 64

// assetName allows letters, digits, hyphens and underscores. Separators and
// dots are excluded, so a name can neither leave its directory nor change
// its extension.
var assetName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateAssetName reports ErrInvalidAssetName for names unusable as a
// theme, style or script name.
func ValidateAssetName(name string) error {
	err := validation.Validate(name,
		validation.Required.Error("empty name"),
		validation.RuneLength(1, MaxAssetNameLength).Error(fmt.Sprintf("longer than %d chars", MaxAssetNameLength)),
		validation.Match(assetName).Error("only letters, digits, '-' and '_' allowed"),
	)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidAssetName, name, err)
	}
	return nil
}
