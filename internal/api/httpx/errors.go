package httpx

import (
	"errors"

	"github.com/dom/fitgate/internal/domain"
)

func asDomainError(err error) *domain.Error {
	var de *domain.Error
	if errors.As(err, &de) {
		return de
	}
	return nil
}
