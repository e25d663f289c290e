package models

type UserRole string
type UserStatus string
type PropertyStatus string
type BlogStatus string
type RequestStatus string
type OutboxStatus string
type PushKind string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleAgent UserRole = "agent"
	UserRoleUser  UserRole = "user"

	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"

	PropertyStatusPending  PropertyStatus = "pending"
	PropertyStatusApproved PropertyStatus = "approved"
	PropertyStatusRejected PropertyStatus = "rejected"

	BlogStatusDraft     BlogStatus = "draft"
	BlogStatusPublished BlogStatus = "published"

	// статусы заявок (inquiry / consultation)
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusResponded RequestStatus = "responded"
	RequestStatusClosed    RequestStatus = "closed"

	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"

	PushKindWeb  PushKind = "web"
	PushKindExpo PushKind = "expo"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleAgent, UserRoleUser:
		return true
	}
	return false
}

func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyStatusPending, PropertyStatusApproved, PropertyStatusRejected:
		return true
	}
	return false
}

func (s BlogStatus) Valid() bool {
	return s == BlogStatusDraft || s == BlogStatusPublished
}

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusResponded, RequestStatusClosed:
		return true
	}
	return false
}
