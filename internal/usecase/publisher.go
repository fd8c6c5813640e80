package usecase

import "context"

// Event subjects published by the usecases.
const (
	SubjectRatingSubmitted         = "rating.submitted"
	SubjectFriendshipAdded         = "friendship.added"
	SubjectFriendshipRemoved       = "friendship.removed"
	SubjectProfessionalRegistered  = "professional.registered"
	SubjectProfessionalRecommended = "professional.recommended"
)

// EventPublisher publishes domain events to the message broker. Publishing is
// best effort from the usecases' point of view: a failed publish is logged
// and never fails the operation that triggered it.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// PhotoStorage stores profile photos and returns their public URLs.
type PhotoStorage interface {
	Upload(ctx context.Context, fileName string, data []byte) (string, error)
	Remove(ctx context.Context, fileURL string) error
}
