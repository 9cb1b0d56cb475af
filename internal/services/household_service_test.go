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

func newHouseholdService(users *MockUserRepository, households *MockHouseholdRepository, members *MockHouseholdMemberRepository) *services.HouseholdService {
	return services.NewHouseholdService(services.NewIdentityResolver(users), households, members)
}

func TestHouseholdService_CreateHousehold(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockHouseholds := new(MockHouseholdRepository)
	mockMembers := new(MockHouseholdMemberRepository)
	service := newHouseholdService(mockUsers, mockHouseholds, mockMembers)

	actor := &models.User{ID: "user-1", Username: "alice"}
	mockUsers.On("GetByID", "user-1").Return(actor, nil).Once()
	mockHouseholds.On("ExistsByName", "Smith Family").Return(false, nil).Once()
	mockHouseholds.On("Create", mock.AnythingOfType("*models.Household")).Return(nil).Once()
	mockMembers.On("Create", mock.MatchedBy(func(m *models.HouseholdMember) bool {
		return m.UserID == "user-1" && m.Role == models.RoleOwner
	})).Return(nil).Once()

	household, err := service.CreateHousehold("user-1", "  Smith Family  ")
	assert.NoError(t, err)
	assert.Equal(t, "Smith Family", household.Name)
	mockHouseholds.AssertExpectations(t)
	mockMembers.AssertExpectations(t)
}

func TestHouseholdService_CreateHousehold_Validation(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockHouseholds := new(MockHouseholdRepository)
	mockMembers := new(MockHouseholdMemberRepository)
	service := newHouseholdService(mockUsers, mockHouseholds, mockMembers)

	// Blank name fails before any repository access.
	_, err := service.CreateHousehold("user-1", "   ")
	assert.True(t, errdefs.IsInvalidArgument(err))
	mockHouseholds.AssertNotCalled(t, "ExistsByName", mock.Anything)

	// Duplicate name
	actor := &models.User{ID: "user-1"}
	mockUsers.On("GetByID", "user-1").Return(actor, nil).Once()
	mockHouseholds.On("ExistsByName", "Smith Family").Return(true, nil).Once()
	_, err = service.CreateHousehold("user-1", "Smith Family")
	assert.True(t, errdefs.IsConflict(err))
}

func TestHouseholdService_CreateHousehold_RollsBackOnMemberFailure(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockHouseholds := new(MockHouseholdRepository)
	mockMembers := new(MockHouseholdMemberRepository)
	service := newHouseholdService(mockUsers, mockHouseholds, mockMembers)

	actor := &models.User{ID: "user-1"}
	mockUsers.On("GetByID", "user-1").Return(actor, nil).Once()
	mockHouseholds.On("ExistsByName", "Smith Family").Return(false, nil).Once()
	mockHouseholds.On("Create", mock.AnythingOfType("*models.Household")).Return(nil).Once()
	mockMembers.On("Create", mock.AnythingOfType("*models.HouseholdMember")).Return(fmt.Errorf("database error")).Once()
	mockHouseholds.On("Delete", mock.AnythingOfType("string")).Return(nil).Once()

	_, err := service.CreateHousehold("user-1", "Smith Family")
	assert.Error(t, err)
	mockHouseholds.AssertExpectations(t)
}

func TestHouseholdService_GetHouseholdByID_NonMemberSeesNotFound(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockHouseholds := new(MockHouseholdRepository)
	mockMembers := new(MockHouseholdMemberRepository)
	service := newHouseholdService(mockUsers, mockHouseholds, mockMembers)

	actor := &models.User{ID: "user-1"}
	household := &models.Household{ID: "hh-1", Name: "Smith Family"}
	mockUsers.On("GetByID", "user-1").Return(actor, nil).Once()
	mockHouseholds.On("GetByID", "hh-1").Return(household, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "user-1").Return(nil, fmt.Errorf("not a member")).Once()

	_, err := service.GetHouseholdByID("user-1", "hh-1")
	assert.True(t, errdefs.IsNotFound(err))
}

func TestHouseholdService_DeleteHousehold_OwnerOnly(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockHouseholds := new(MockHouseholdRepository)
	mockMembers := new(MockHouseholdMemberRepository)
	service := newHouseholdService(mockUsers, mockHouseholds, mockMembers)

	actor := &models.User{ID: "user-1"}
	household := &models.Household{ID: "hh-1"}

	// An ADMIN cannot delete.
	mockUsers.On("GetByID", "user-1").Return(actor, nil).Once()
	mockHouseholds.On("GetByID", "hh-1").Return(household, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "user-1").Return(&models.HouseholdMember{ID: "m-1", Role: models.RoleAdmin}, nil).Once()
	err := service.DeleteHousehold("user-1", "hh-1")
	assert.True(t, errdefs.IsPermissionDenied(err))

	// The OWNER can; memberships go first.
	mockUsers.On("GetByID", "user-1").Return(actor, nil).Once()
	mockHouseholds.On("GetByID", "hh-1").Return(household, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "user-1").Return(&models.HouseholdMember{ID: "m-1", Role: models.RoleOwner}, nil).Once()
	mockMembers.On("DeleteByHouseholdID", "hh-1").Return(nil).Once()
	mockHouseholds.On("Delete", "hh-1").Return(nil).Once()
	err = service.DeleteHousehold("user-1", "hh-1")
	assert.NoError(t, err)
	mockMembers.AssertExpectations(t)
}

func TestHouseholdService_LeaveHousehold_OwnerBlocked(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockHouseholds := new(MockHouseholdRepository)
	mockMembers := new(MockHouseholdMemberRepository)
	service := newHouseholdService(mockUsers, mockHouseholds, mockMembers)

	actor := &models.User{ID: "user-1"}
	mockUsers.On("GetByID", "user-1").Return(actor, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "user-1").Return(&models.HouseholdMember{ID: "m-1", Role: models.RoleOwner}, nil).Once()

	err := service.LeaveHousehold("user-1", "hh-1")
	assert.True(t, errdefs.IsFailedPrecondition(err))

	// A MEMBER leaves freely.
	mockUsers.On("GetByID", "user-1").Return(actor, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "user-1").Return(&models.HouseholdMember{ID: "m-1", Role: models.RoleMember}, nil).Once()
	mockMembers.On("Delete", "m-1").Return(nil).Once()
	err = service.LeaveHousehold("user-1", "hh-1")
	assert.NoError(t, err)
	mockMembers.AssertExpectations(t)
}

func TestHouseholdService_TransferOwnership(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockHouseholds := new(MockHouseholdRepository)
	mockMembers := new(MockHouseholdMemberRepository)
	service := newHouseholdService(mockUsers, mockHouseholds, mockMembers)

	actor := &models.User{ID: "owner-1"}
	owner := &models.HouseholdMember{ID: "m-1", HouseholdID: "hh-1", UserID: "owner-1", Role: models.RoleOwner}
	target := &models.HouseholdMember{ID: "m-2", HouseholdID: "hh-1", UserID: "user-2", Role: models.RoleMember}

	mockUsers.On("GetByID", "owner-1").Return(actor, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "owner-1").Return(owner, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "user-2").Return(target, nil).Once()
	mockMembers.On("Save", mock.MatchedBy(func(m *models.HouseholdMember) bool {
		return m.ID == "m-1" && m.Role == models.RoleAdmin
	})).Return(nil).Once()
	mockMembers.On("Save", mock.MatchedBy(func(m *models.HouseholdMember) bool {
		return m.ID == "m-2" && m.Role == models.RoleOwner
	})).Return(nil).Once()

	err := service.TransferOwnership("owner-1", "hh-1", "user-2")
	assert.NoError(t, err)
	mockMembers.AssertExpectations(t)
}

func TestHouseholdService_TransferOwnership_SelfTransferRejected(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockHouseholds := new(MockHouseholdRepository)
	mockMembers := new(MockHouseholdMemberRepository)
	service := newHouseholdService(mockUsers, mockHouseholds, mockMembers)

	actor := &models.User{ID: "owner-1"}
	owner := &models.HouseholdMember{ID: "m-1", HouseholdID: "hh-1", UserID: "owner-1", Role: models.RoleOwner}
	mockUsers.On("GetByID", "owner-1").Return(actor, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "owner-1").Return(owner, nil).Once()

	err := service.TransferOwnership("owner-1", "hh-1", "owner-1")
	assert.True(t, errdefs.IsInvalidArgument(err))
}

func TestHouseholdService_ChangeMemberRole_Matrix(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockHouseholds := new(MockHouseholdRepository)
	mockMembers := new(MockHouseholdMemberRepository)
	service := newHouseholdService(mockUsers, mockHouseholds, mockMembers)

	actor := &models.User{ID: "user-1"}

	// OWNER can never be assigned via role change, checked before anything else.
	_, err := service.ChangeMemberRole("user-1", "hh-1", "m-2", models.RoleOwner)
	assert.True(t, errdefs.IsInvalidArgument(err))
	mockUsers.AssertNotCalled(t, "GetByID", mock.Anything)

	// Unknown role
	_, err = service.ChangeMemberRole("user-1", "hh-1", "m-2", models.HouseholdRole("SUPERVISOR"))
	assert.True(t, errdefs.IsInvalidArgument(err))

	// A plain MEMBER cannot change roles.
	mockUsers.On("GetByID", "user-1").Return(actor, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "user-1").Return(&models.HouseholdMember{ID: "m-1", Role: models.RoleMember}, nil).Once()
	mockMembers.On("GetByID", "m-2").Return(&models.HouseholdMember{ID: "m-2", HouseholdID: "hh-1", Role: models.RoleMember}, nil).Once()
	_, err = service.ChangeMemberRole("user-1", "hh-1", "m-2", models.RoleAdmin)
	assert.True(t, errdefs.IsPermissionDenied(err))

	// An ADMIN cannot touch another ADMIN.
	mockUsers.On("GetByID", "user-1").Return(actor, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "user-1").Return(&models.HouseholdMember{ID: "m-1", Role: models.RoleAdmin}, nil).Once()
	mockMembers.On("GetByID", "m-2").Return(&models.HouseholdMember{ID: "m-2", HouseholdID: "hh-1", Role: models.RoleAdmin}, nil).Once()
	_, err = service.ChangeMemberRole("user-1", "hh-1", "m-2", models.RoleMember)
	assert.True(t, errdefs.IsPermissionDenied(err))

	// Even the OWNER cannot demote the OWNER row here.
	mockUsers.On("GetByID", "user-1").Return(actor, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "user-1").Return(&models.HouseholdMember{ID: "m-1", Role: models.RoleOwner}, nil).Once()
	mockMembers.On("GetByID", "m-2").Return(&models.HouseholdMember{ID: "m-2", HouseholdID: "hh-1", Role: models.RoleOwner}, nil).Once()
	_, err = service.ChangeMemberRole("user-1", "hh-1", "m-2", models.RoleMember)
	assert.True(t, errdefs.IsFailedPrecondition(err))

	// A member row of another household is reported absent.
	mockUsers.On("GetByID", "user-1").Return(actor, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "user-1").Return(&models.HouseholdMember{ID: "m-1", Role: models.RoleOwner}, nil).Once()
	mockMembers.On("GetByID", "m-other").Return(&models.HouseholdMember{ID: "m-other", HouseholdID: "hh-2", Role: models.RoleMember}, nil).Once()
	_, err = service.ChangeMemberRole("user-1", "hh-1", "m-other", models.RoleAdmin)
	assert.True(t, errdefs.IsNotFound(err))

	// The OWNER promotes a MEMBER to ADMIN.
	targetRow := &models.HouseholdMember{ID: "m-2", HouseholdID: "hh-1", Role: models.RoleMember}
	mockUsers.On("GetByID", "user-1").Return(actor, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "user-1").Return(&models.HouseholdMember{ID: "m-1", Role: models.RoleOwner}, nil).Once()
	mockMembers.On("GetByID", "m-2").Return(targetRow, nil).Once()
	mockMembers.On("Save", targetRow).Return(nil).Once()
	changed, err := service.ChangeMemberRole("user-1", "hh-1", "m-2", models.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, changed.Role)
	mockMembers.AssertExpectations(t)
}

func TestHouseholdService_SearchHouseholds_FiltersToMemberships(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockHouseholds := new(MockHouseholdRepository)
	mockMembers := new(MockHouseholdMemberRepository)
	service := newHouseholdService(mockUsers, mockHouseholds, mockMembers)

	actor := &models.User{ID: "user-1"}
	matches := []models.Household{
		{ID: "hh-1", Name: "Smith Family"},
		{ID: "hh-2", Name: "Smithsonian"},
	}
	mockUsers.On("GetByID", "user-1").Return(actor, nil).Once()
	mockHouseholds.On("SearchByName", "smith").Return(matches, nil).Once()
	mockMembers.On("ExistsByHouseholdAndUser", "hh-1", "user-1").Return(true, nil).Once()
	mockMembers.On("ExistsByHouseholdAndUser", "hh-2", "user-1").Return(false, nil).Once()

	visible, err := service.SearchHouseholds("user-1", "smith")
	assert.NoError(t, err)
	assert.Len(t, visible, 1)
	assert.Equal(t, "hh-1", visible[0].ID)
}

func TestHouseholdService_UpdateHousehold_RenameToSameNameAllowed(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockHouseholds := new(MockHouseholdRepository)
	mockMembers := new(MockHouseholdMemberRepository)
	service := newHouseholdService(mockUsers, mockHouseholds, mockMembers)

	actor := &models.User{ID: "user-1"}
	household := &models.Household{ID: "hh-1", Name: "Smith Family"}
	mockUsers.On("GetByID", "user-1").Return(actor, nil).Once()
	mockHouseholds.On("GetByID", "hh-1").Return(household, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "user-1").Return(&models.HouseholdMember{ID: "m-1", Role: models.RoleAdmin}, nil).Once()
	mockHouseholds.On("Save", household).Return(nil).Once()

	updated, err := service.UpdateHousehold("user-1", "hh-1", "Smith Family")
	assert.NoError(t, err)
	assert.Equal(t, "Smith Family", updated.Name)
	// No uniqueness probe when the name did not change.
	mockHouseholds.AssertNotCalled(t, "ExistsByName", mock.Anything)
}
