package services_test

import (
	"io"
	"log"
	"os"
	"testing"
	"time"

	"pantri/internal/models"
	"pantri/pkg/openfoodfacts"

	"github.com/stretchr/testify/mock"
)

// TestMain is used to setup test environment
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockHouseholdRepository is a mock implementation of repositories.HouseholdRepository
type MockHouseholdRepository struct {
	mock.Mock
}

func (m *MockHouseholdRepository) Create(household *models.Household) error {
	args := m.Called(household)
	return args.Error(0)
}

func (m *MockHouseholdRepository) GetByID(id string) (*models.Household, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Household), args.Error(1)
}

func (m *MockHouseholdRepository) GetByName(name string) (*models.Household, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Household), args.Error(1)
}

func (m *MockHouseholdRepository) ExistsByName(name string) (bool, error) {
	args := m.Called(name)
	return args.Bool(0), args.Error(1)
}

func (m *MockHouseholdRepository) Save(household *models.Household) error {
	args := m.Called(household)
	return args.Error(0)
}

func (m *MockHouseholdRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockHouseholdRepository) SearchByName(term string) ([]models.Household, error) {
	args := m.Called(term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Household), args.Error(1)
}

func (m *MockHouseholdRepository) FindByUserID(userID string) ([]models.Household, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Household), args.Error(1)
}

// MockHouseholdMemberRepository is a mock implementation of repositories.HouseholdMemberRepository
type MockHouseholdMemberRepository struct {
	mock.Mock
}

func (m *MockHouseholdMemberRepository) Create(member *models.HouseholdMember) error {
	args := m.Called(member)
	return args.Error(0)
}

func (m *MockHouseholdMemberRepository) GetByID(id string) (*models.HouseholdMember, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HouseholdMember), args.Error(1)
}

func (m *MockHouseholdMemberRepository) GetByHouseholdAndUser(householdID, userID string) (*models.HouseholdMember, error) {
	args := m.Called(householdID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HouseholdMember), args.Error(1)
}

func (m *MockHouseholdMemberRepository) ExistsByHouseholdAndUser(householdID, userID string) (bool, error) {
	args := m.Called(householdID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockHouseholdMemberRepository) FindByHouseholdID(householdID string) ([]models.HouseholdMember, error) {
	args := m.Called(householdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HouseholdMember), args.Error(1)
}

func (m *MockHouseholdMemberRepository) FindByUserID(userID string) ([]models.HouseholdMember, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HouseholdMember), args.Error(1)
}

func (m *MockHouseholdMemberRepository) Save(member *models.HouseholdMember) error {
	args := m.Called(member)
	return args.Error(0)
}

func (m *MockHouseholdMemberRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockHouseholdMemberRepository) DeleteByHouseholdID(householdID string) error {
	args := m.Called(householdID)
	return args.Error(0)
}

// MockInvitationRepository is a mock implementation of repositories.HouseholdInvitationRepository
type MockInvitationRepository struct {
	mock.Mock
}

func (m *MockInvitationRepository) Create(invitation *models.HouseholdInvitation) error {
	args := m.Called(invitation)
	return args.Error(0)
}

func (m *MockInvitationRepository) GetByID(id string) (*models.HouseholdInvitation, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HouseholdInvitation), args.Error(1)
}

func (m *MockInvitationRepository) Save(invitation *models.HouseholdInvitation) error {
	args := m.Called(invitation)
	return args.Error(0)
}

func (m *MockInvitationRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockInvitationRepository) HasPendingByHouseholdAndUser(householdID, userID string) (bool, error) {
	args := m.Called(householdID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvitationRepository) HasPendingByHouseholdAndEmail(householdID, email string) (bool, error) {
	args := m.Called(householdID, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvitationRepository) FindByInvitedUserID(userID string) ([]models.HouseholdInvitation, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HouseholdInvitation), args.Error(1)
}

func (m *MockInvitationRepository) LinkEmailInvitationsToUser(userID, email string) (int64, error) {
	args := m.Called(userID, email)
	return args.Get(0).(int64), args.Error(1)
}

// MockLocationRepository is a mock implementation of repositories.LocationRepository
type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) Create(location *models.Location) error {
	args := m.Called(location)
	return args.Error(0)
}

func (m *MockLocationRepository) GetByID(id string) (*models.Location, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationRepository) FindByHouseholdID(householdID string) ([]models.Location, error) {
	args := m.Called(householdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}

func (m *MockLocationRepository) ExistsByHouseholdIDAndName(householdID, name string) (bool, error) {
	args := m.Called(householdID, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockLocationRepository) Save(location *models.Location) error {
	args := m.Called(location)
	return args.Error(0)
}

func (m *MockLocationRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByUPC(upc string) (*models.Product, error) {
	args := m.Called(upc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) ExistsByUPC(upc string) (bool, error) {
	args := m.Called(upc)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Save(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockProductRepository) FindRequiringRetry(maxAttempts int) ([]models.Product, error) {
	args := m.Called(maxAttempts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

// MockPantryItemRepository is a mock implementation of repositories.PantryItemRepository
type MockPantryItemRepository struct {
	mock.Mock
}

func (m *MockPantryItemRepository) Create(item *models.PantryItem) error {
	args := m.Called(item)
	return args.Error(0)
}

func (m *MockPantryItemRepository) GetByID(id string) (*models.PantryItem, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PantryItem), args.Error(1)
}

func (m *MockPantryItemRepository) Save(item *models.PantryItem) error {
	args := m.Called(item)
	return args.Error(0)
}

func (m *MockPantryItemRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockPantryItemRepository) FindByLocationProductAndExpiration(locationID, productID string, expirationDate time.Time) (*models.PantryItem, error) {
	args := m.Called(locationID, productID, expirationDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PantryItem), args.Error(1)
}

func (m *MockPantryItemRepository) FindByLocationProductAndNoExpiration(locationID, productID string) (*models.PantryItem, error) {
	args := m.Called(locationID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PantryItem), args.Error(1)
}

func (m *MockPantryItemRepository) FindByHouseholdID(householdID string) ([]models.PantryItem, error) {
	args := m.Called(householdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PantryItem), args.Error(1)
}

func (m *MockPantryItemRepository) FindByLocationID(locationID string) ([]models.PantryItem, error) {
	args := m.Called(locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PantryItem), args.Error(1)
}

func (m *MockPantryItemRepository) FindLowStock(householdID string, threshold float64) ([]models.PantryItem, error) {
	args := m.Called(householdID, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PantryItem), args.Error(1)
}

func (m *MockPantryItemRepository) FindExpiringBetween(householdID string, from, to time.Time) ([]models.PantryItem, error) {
	args := m.Called(householdID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PantryItem), args.Error(1)
}

func (m *MockPantryItemRepository) SearchByProductName(householdID, term string) ([]models.PantryItem, error) {
	args := m.Called(householdID, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PantryItem), args.Error(1)
}

func (m *MockPantryItemRepository) FindByHouseholdAndProduct(householdID, productID string) ([]models.PantryItem, error) {
	args := m.Called(householdID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PantryItem), args.Error(1)
}

// MockUPCLookup is a mock implementation of services.UPCLookup
type MockUPCLookup struct {
	mock.Mock
}

func (m *MockUPCLookup) FetchProductData(upc string) (*openfoodfacts.ProductData, error) {
	args := m.Called(upc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openfoodfacts.ProductData), args.Error(1)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(routingKey string, body []byte) error {
	args := m.Called(routingKey, body)
	return args.Error(0)
}
