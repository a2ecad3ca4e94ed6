package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompany(t *testing.T) {
	c, err := NewCompany(uuid.New(), CompanyParams{
		Name:     "Analytical Engines Ltd",
		Email:    "hello@engines.io",
		Industry: "Manufacturing",
		Address:  Address{City: " London ", Country: "UK"},
	})
	require.NoError(t, err)
	assert.Equal(t, CompanySizeSmall, c.Size)
	assert.Equal(t, CompanyStatusProspect, c.Status)
	assert.Equal(t, "London, UK", c.Address.FullAddress())
}

func TestNewCompany_RequiresIndustry(t *testing.T) {
	_, err := NewCompany(uuid.New(), CompanyParams{Name: "X", Email: "x@x.io"})
	assert.Error(t, err)
}

func TestCompany_UpdateKeepsSizeAndStatus(t *testing.T) {
	c, err := NewCompany(uuid.New(), CompanyParams{
		Name: "A", Email: "a@a.io", Industry: "Retail",
		Size: CompanySizeLarge, Status: CompanyStatusActive,
	})
	require.NoError(t, err)

	require.NoError(t, c.Update(uuid.New(), CompanyParams{Name: "B", Email: "b@a.io", Industry: "Retail"}))
	assert.Equal(t, "B", c.Name)
	assert.Equal(t, CompanySizeLarge, c.Size)
	assert.Equal(t, CompanyStatusActive, c.Status)

	assert.Error(t, c.Update(uuid.New(), CompanyParams{Name: "B", Email: "b@a.io", Industry: "Retail", Size: "huge"}))
}
