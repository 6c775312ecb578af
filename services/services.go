package services

import (
	"time"

	"mediation_flow_go/repository"
)

// Clock returns the current time; services use it instead of time.Now so tests can pin it
type Clock func() time.Time

// SystemClock is the wall clock in UTC
func SystemClock() time.Time {
	return time.Now().UTC()
}

func (c Clock) orDefault() Clock {
	if c == nil {
		return SystemClock
	}
	return c
}

// Services bundles the case-management components over one store
type Services struct {
	Registry      *CaseRegistry
	Lifecycle     *LifecycleController
	Mediators     *MediatorAssignmentService
	Sessions      *SessionLedger
	Timeline      *TimelineReconstructor
	Notifications *NotificationService
}

// New wires every component against store
func New(store repository.Store, now Clock) *Services {
	return &Services{
		Registry:      NewCaseRegistry(store, now),
		Lifecycle:     NewLifecycleController(store, now),
		Mediators:     NewMediatorAssignmentService(store, now),
		Sessions:      NewSessionLedger(store, now),
		Timeline:      NewTimelineReconstructor(store),
		Notifications: NewNotificationService(store, now),
	}
}
