package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"optivus-service/internal/models"
	"optivus-service/internal/services"
)

func newDashboardRouter(t *testing.T, tierDepth int) (*gorm.DB, *gin.Engine, models.Account) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.ReferralEdge{},
		&models.LedgerEntry{},
		&models.ArchivedLedgerEntry{},
	))

	// A straight chain: root sponsors member1 sponsors member2, and so on.
	var root models.Account
	var parent *models.Account
	for i := 0; i < 5; i++ {
		code := fmt.Sprintf("REFM%d", i)
		account := models.Account{
			Username:     fmt.Sprintf("member%d", i),
			Email:        fmt.Sprintf("member%d@optivus.test", i),
			Role:         models.RoleUser,
			Status:       models.StatusActive,
			Activated:    true,
			ReferralCode: &code,
		}
		if parent != nil {
			account.SponsorId = &parent.ID
		}
		require.NoError(t, db.Create(&account).Error)
		if parent != nil {
			require.NoError(t, db.Create(&models.ReferralEdge{
				ChildId: account.ID, SponsorId: *account.SponsorId,
			}).Error)
		}
		if i == 0 {
			root = account
		}
		parent = &account
	}

	ledger := services.NewLedgerService(db)
	referral := services.NewReferralService(db)
	dashboard := services.NewDashboardService(db, ledger, referral)
	handler := NewDashboardHandler(dashboard, tierDepth)

	r := gin.New()
	r.GET("/dashboard/team", func(c *gin.Context) {
		c.Set("accountId", root.ID)
		handler.Team(c)
	})
	return db, r, root
}

func fetchTeam(t *testing.T, r *gin.Engine, query string) services.TreeNode {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/team"+query, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data services.TreeNode `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data
}

func treeDepthOf(node services.TreeNode) int {
	depth := 0
	cursor := node
	for len(cursor.Children) > 0 {
		depth++
		cursor = *cursor.Children[0]
	}
	return depth
}

func TestTeamDepthParameter(t *testing.T) {
	_, r, _ := newDashboardRouter(t, 2)

	// Default is the configured tier depth.
	assert.Equal(t, 2, treeDepthOf(fetchTeam(t, r, "")))

	// An explicit depth overrides it, deeper than the tier count.
	assert.Equal(t, 4, treeDepthOf(fetchTeam(t, r, "?depth=4")))
	assert.Equal(t, 1, treeDepthOf(fetchTeam(t, r, "?depth=1")))

	// Garbage and out-of-range values fall back safely.
	assert.Equal(t, 2, treeDepthOf(fetchTeam(t, r, "?depth=nope")))
	assert.Equal(t, 2, treeDepthOf(fetchTeam(t, r, "?depth=-3")))
	assert.Equal(t, 4, treeDepthOf(fetchTeam(t, r, "?depth=9999")))
}
