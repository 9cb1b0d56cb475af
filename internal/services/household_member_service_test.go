package services_test

import (
	"testing"

	"pantri/internal/models"
	"pantri/internal/services"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newMemberService(users *MockUserRepository, members *MockHouseholdMemberRepository, households *MockHouseholdRepository) *services.HouseholdMemberService {
	return services.NewHouseholdMemberService(services.NewIdentityResolver(users), members, households, users)
}

func TestHouseholdMemberService_AddMember(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockMembers := new(MockHouseholdMemberRepository)
	mockHouseholds := new(MockHouseholdRepository)
	service := newMemberService(mockUsers, mockMembers, mockHouseholds)

	actor := &models.User{ID: "admin-1"}
	target := &models.User{ID: "user-2"}
	mockUsers.On("GetByID", "admin-1").Return(actor, nil).Once()
	mockHouseholds.On("GetByID", "hh-1").Return(&models.Household{ID: "hh-1"}, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "admin-1").Return(&models.HouseholdMember{ID: "m-1", Role: models.RoleAdmin}, nil).Once()
	mockUsers.On("GetByID", "user-2").Return(target, nil).Once()
	mockMembers.On("ExistsByHouseholdAndUser", "hh-1", "user-2").Return(false, nil).Once()
	mockMembers.On("Create", mock.MatchedBy(func(m *models.HouseholdMember) bool {
		return m.UserID == "user-2" && m.Role == models.RoleMember
	})).Return(nil).Once()

	member, err := service.AddMemberToHousehold("admin-1", "hh-1", "user-2", models.RoleMember)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleMember, member.Role)
	mockMembers.AssertExpectations(t)
}

func TestHouseholdMemberService_AddMember_Validation(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockMembers := new(MockHouseholdMemberRepository)
	mockHouseholds := new(MockHouseholdRepository)
	service := newMemberService(mockUsers, mockMembers, mockHouseholds)

	// OWNER can never be assigned directly.
	_, err := service.AddMemberToHousehold("admin-1", "hh-1", "user-2", models.RoleOwner)
	assert.True(t, errdefs.IsInvalidArgument(err))

	// Unknown role
	_, err = service.AddMemberToHousehold("admin-1", "hh-1", "user-2", models.HouseholdRole("GUEST"))
	assert.True(t, errdefs.IsInvalidArgument(err))

	// Duplicate membership
	actor := &models.User{ID: "admin-1"}
	mockUsers.On("GetByID", "admin-1").Return(actor, nil).Once()
	mockHouseholds.On("GetByID", "hh-1").Return(&models.Household{ID: "hh-1"}, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "admin-1").Return(&models.HouseholdMember{ID: "m-1", Role: models.RoleOwner}, nil).Once()
	mockUsers.On("GetByID", "user-2").Return(&models.User{ID: "user-2"}, nil).Once()
	mockMembers.On("ExistsByHouseholdAndUser", "hh-1", "user-2").Return(true, nil).Once()
	_, err = service.AddMemberToHousehold("admin-1", "hh-1", "user-2", models.RoleMember)
	assert.True(t, errdefs.IsConflict(err))
}

func TestHouseholdMemberService_GetMemberByID_CrossHouseholdHidden(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockMembers := new(MockHouseholdMemberRepository)
	mockHouseholds := new(MockHouseholdRepository)
	service := newMemberService(mockUsers, mockMembers, mockHouseholds)

	actor := &models.User{ID: "user-1"}
	mockUsers.On("GetByID", "user-1").Return(actor, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "user-1").Return(&models.HouseholdMember{ID: "m-1"}, nil).Once()
	mockMembers.On("GetByID", "m-foreign").Return(&models.HouseholdMember{ID: "m-foreign", HouseholdID: "hh-2"}, nil).Once()

	_, err := service.GetMemberByID("user-1", "hh-1", "m-foreign")
	assert.True(t, errdefs.IsNotFound(err))
}

func TestHouseholdMemberService_RemoveMember(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockMembers := new(MockHouseholdMemberRepository)
	mockHouseholds := new(MockHouseholdRepository)
	service := newMemberService(mockUsers, mockMembers, mockHouseholds)

	actor := &models.User{ID: "user-1"}

	// The OWNER row is never removable, even by the OWNER.
	mockUsers.On("GetByID", "user-1").Return(actor, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "user-1").Return(&models.HouseholdMember{ID: "m-1", Role: models.RoleOwner}, nil).Once()
	mockMembers.On("GetByID", "m-owner").Return(&models.HouseholdMember{ID: "m-owner", HouseholdID: "hh-1", Role: models.RoleOwner}, nil).Once()
	err := service.RemoveMember("user-1", "hh-1", "m-owner")
	assert.True(t, errdefs.IsFailedPrecondition(err))

	// An ADMIN cannot remove another ADMIN.
	mockUsers.On("GetByID", "user-1").Return(actor, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "user-1").Return(&models.HouseholdMember{ID: "m-1", Role: models.RoleAdmin}, nil).Once()
	mockMembers.On("GetByID", "m-admin").Return(&models.HouseholdMember{ID: "m-admin", HouseholdID: "hh-1", Role: models.RoleAdmin}, nil).Once()
	err = service.RemoveMember("user-1", "hh-1", "m-admin")
	assert.True(t, errdefs.IsPermissionDenied(err))

	// The OWNER removes an ADMIN.
	mockUsers.On("GetByID", "user-1").Return(actor, nil).Once()
	mockMembers.On("GetByHouseholdAndUser", "hh-1", "user-1").Return(&models.HouseholdMember{ID: "m-1", Role: models.RoleOwner}, nil).Once()
	mockMembers.On("GetByID", "m-admin").Return(&models.HouseholdMember{ID: "m-admin", HouseholdID: "hh-1", Role: models.RoleAdmin}, nil).Once()
	mockMembers.On("Delete", "m-admin").Return(nil).Once()
	err = service.RemoveMember("user-1", "hh-1", "m-admin")
	assert.NoError(t, err)
	mockMembers.AssertExpectations(t)
}
