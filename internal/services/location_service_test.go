package services_test

import (
	"fmt"
	"testing"

	"pantri/internal/models"
	"pantri/internal/services"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type locationMocks struct {
	users      *MockUserRepository
	locations  *MockLocationRepository
	households *MockHouseholdRepository
	members    *MockHouseholdMemberRepository
}

func newLocationService(t *testing.T) (*services.LocationService, *locationMocks) {
	t.Helper()
	m := &locationMocks{
		users:      new(MockUserRepository),
		locations:  new(MockLocationRepository),
		households: new(MockHouseholdRepository),
		members:    new(MockHouseholdMemberRepository),
	}
	identity := services.NewIdentityResolver(m.users)
	return services.NewLocationService(identity, m.locations, m.households, m.members), m
}

func TestLocationService_CreateLocation(t *testing.T) {
	service, m := newLocationService(t)

	actor := &models.User{ID: "user-1"}
	m.users.On("GetByID", "user-1").Return(actor, nil).Once()
	m.households.On("GetByID", "hh-1").Return(&models.Household{ID: "hh-1"}, nil).Once()
	m.members.On("ExistsByHouseholdAndUser", "hh-1", "user-1").Return(true, nil).Once()
	m.locations.On("ExistsByHouseholdIDAndName", "hh-1", "Pantry").Return(false, nil).Once()
	m.locations.On("Create", mock.MatchedBy(func(l *models.Location) bool {
		return l.Name == "Pantry" && l.HouseholdID == "hh-1"
	})).Return(nil).Once()

	location, err := service.CreateLocation("user-1", "hh-1", "  Pantry ", " Kitchen shelf ")
	assert.NoError(t, err)
	assert.Equal(t, "Pantry", location.Name)
	assert.Equal(t, "Kitchen shelf", location.Description)
	m.locations.AssertExpectations(t)
}

func TestLocationService_CreateLocation_Guards(t *testing.T) {
	service, m := newLocationService(t)

	// Blank name fails before any repository access.
	_, err := service.CreateLocation("user-1", "hh-1", "   ", "")
	assert.True(t, errdefs.IsInvalidArgument(err))
	m.users.AssertNotCalled(t, "GetByID", mock.Anything)

	// Duplicate name in the household.
	actor := &models.User{ID: "user-1"}
	m.users.On("GetByID", "user-1").Return(actor, nil).Once()
	m.households.On("GetByID", "hh-1").Return(&models.Household{ID: "hh-1"}, nil).Once()
	m.members.On("ExistsByHouseholdAndUser", "hh-1", "user-1").Return(true, nil).Once()
	m.locations.On("ExistsByHouseholdIDAndName", "hh-1", "Pantry").Return(true, nil).Once()
	_, err = service.CreateLocation("user-1", "hh-1", "Pantry", "")
	assert.True(t, errdefs.IsConflict(err))

	// Non-member denied.
	m.users.On("GetByID", "user-1").Return(actor, nil).Once()
	m.households.On("GetByID", "hh-1").Return(&models.Household{ID: "hh-1"}, nil).Once()
	m.members.On("ExistsByHouseholdAndUser", "hh-1", "user-1").Return(false, nil).Once()
	_, err = service.CreateLocation("user-1", "hh-1", "Pantry", "")
	assert.True(t, errdefs.IsPermissionDenied(err))
}

func TestLocationService_UpdateLocation_UniquenessOnlyOnRename(t *testing.T) {
	service, m := newLocationService(t)

	actor := &models.User{ID: "user-1"}
	location := &models.Location{ID: "loc-1", HouseholdID: "hh-1", Name: "Pantry"}
	m.users.On("GetByID", "user-1").Return(actor, nil).Once()
	m.locations.On("GetByID", "loc-1").Return(location, nil).Once()
	m.members.On("ExistsByHouseholdAndUser", "hh-1", "user-1").Return(true, nil).Once()
	m.locations.On("Save", location).Return(nil).Once()

	updated, err := service.UpdateLocation("user-1", "loc-1", "Pantry", "Updated description")
	assert.NoError(t, err)
	assert.Equal(t, "Updated description", updated.Description)
	m.locations.AssertNotCalled(t, "ExistsByHouseholdIDAndName", mock.Anything, mock.Anything)
}

func TestLocationService_PatchLocation_RejectsUnknownFields(t *testing.T) {
	service, m := newLocationService(t)

	actor := &models.User{ID: "user-1"}
	location := &models.Location{ID: "loc-1", HouseholdID: "hh-1", Name: "Pantry"}
	m.users.On("GetByID", "user-1").Return(actor, nil).Once()
	m.locations.On("GetByID", "loc-1").Return(location, nil).Once()
	m.members.On("ExistsByHouseholdAndUser", "hh-1", "user-1").Return(true, nil).Once()

	_, err := service.PatchLocation("user-1", "loc-1", map[string]interface{}{
		"name":        "Cellar",
		"bogus_field": true,
	})
	assert.True(t, errdefs.IsInvalidArgument(err))
	m.locations.AssertNotCalled(t, "Save", mock.Anything)
}

func TestLocationService_PatchLocation_NullClearsDescription(t *testing.T) {
	service, m := newLocationService(t)

	actor := &models.User{ID: "user-1"}
	location := &models.Location{ID: "loc-1", HouseholdID: "hh-1", Name: "Pantry", Description: "old"}
	m.users.On("GetByID", "user-1").Return(actor, nil).Once()
	m.locations.On("GetByID", "loc-1").Return(location, nil).Once()
	m.members.On("ExistsByHouseholdAndUser", "hh-1", "user-1").Return(true, nil).Once()
	m.locations.On("Save", location).Return(nil).Once()

	patched, err := service.PatchLocation("user-1", "loc-1", map[string]interface{}{
		"description": nil,
	})
	assert.NoError(t, err)
	assert.Empty(t, patched.Description)
	m.locations.AssertExpectations(t)
}

func TestLocationService_DeleteLocation_PropagatesIntegrityError(t *testing.T) {
	service, m := newLocationService(t)

	actor := &models.User{ID: "user-1"}
	location := &models.Location{ID: "loc-1", HouseholdID: "hh-1", Name: "Pantry"}
	m.users.On("GetByID", "user-1").Return(actor, nil).Once()
	m.locations.On("GetByID", "loc-1").Return(location, nil).Once()
	m.members.On("ExistsByHouseholdAndUser", "hh-1", "user-1").Return(true, nil).Once()
	m.locations.On("Delete", "loc-1").Return(fmt.Errorf("location loc-1 still has 3 pantry item(s): %w", errdefs.ErrUnavailable)).Once()

	err := service.DeleteLocation("user-1", "loc-1")
	assert.True(t, errdefs.IsUnavailable(err))
}
