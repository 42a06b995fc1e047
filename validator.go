package askailimiter

import (
	"github.com/ajiwo/askailimiter/strategies"
	"github.com/ajiwo/askailimiter/utils"
)

func validateKeyPrefix(prefix string) error {
	if err := utils.ValidateKeyPrefix(prefix); err != nil {
		return NewInvalidKeyPrefixError(err)
	}
	return nil
}

func validateMaxRetries(n int) error {
	if n < 1 || n > strategies.MaxRetries {
		return NewInvalidMaxRetriesError(n)
	}
	return nil
}
