package store

import "github.com/danielsct56bm/cerro-service/internal/models"

var transitionMap = map[string][]string{
	models.StatusInProgress: {models.StatusOpen, models.StatusResolved},
	models.StatusResolved:   {models.StatusInProgress},
	models.StatusClosed:     {models.StatusResolved},
	models.StatusCanceled:   {models.StatusOpen},
	models.StatusOpen:       {models.StatusInProgress},
}

// ValidTransition reports whether a ticket in fromStatus may move to
// toStatus.
func ValidTransition(toStatus, fromStatus string) bool {
	allowed, ok := transitionMap[toStatus]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == fromStatus {
			return true
		}
	}
	return false
}
