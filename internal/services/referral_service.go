package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"optivus-service/internal/models"
)

type ReferralService struct {
	DB *gorm.DB
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{DB: db}
}

type Ancestor struct {
	AccountId int
	Level     int
}

type TreeNode struct {
	AccountId int         `json:"accountId"`
	Username  string      `json:"username"`
	Level     int         `json:"level"`
	Activated bool        `json:"activated"`
	Children  []*TreeNode `json:"children"`
}

// AttachSponsor links an account to the owner of the given referral code.
// The link is permanent and may only be set before activation; activation
// freezes it into a referral edge.
func (s *ReferralService) AttachSponsor(accountId int, referralCode string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.Where("id = ?", accountId).First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		if account.SponsorId != nil {
			return ErrSponsorAlreadySet
		}
		if account.Activated {
			return ErrAlreadyActivated
		}

		var sponsor models.Account
		if err := tx.Where("referral_code = ?", referralCode).First(&sponsor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidReferralCode
			}
			return err
		}
		if !sponsor.Activated || sponsor.Status != models.StatusActive {
			return ErrInvalidReferralCode
		}
		if sponsor.ID == account.ID {
			return ErrInvalidReferralCode
		}

		// Walk up from the sponsor to make sure the new edge cannot close
		// a cycle. The graph is a forest, so the walk terminates at a root.
		cursor := sponsor.SponsorId
		for cursor != nil {
			if *cursor == account.ID {
				return ErrInvalidReferralCode
			}
			var next models.Account
			if err := tx.Select("sponsor_id").Where("id = ?", *cursor).First(&next).Error; err != nil {
				return err
			}
			cursor = next.SponsorId
		}

		if err := tx.Model(&models.Account{}).Where("id = ?", account.ID).
			Update("sponsor_id", sponsor.ID).Error; err != nil {
			return err
		}
		return nil
	})
}

// AncestorChain returns the sponsor chain of an account, closest first,
// walking the referral edges at most maxDepth levels. Level 1 is the
// direct sponsor. Edges exist only for activated accounts, so the chain
// is exactly the set of commission recipients.
func (s *ReferralService) AncestorChain(accountId int, maxDepth int) ([]Ancestor, error) {
	chain := make([]Ancestor, 0, maxDepth)

	var exists int64
	if err := s.DB.Model(&models.Account{}).Where("id = ?", accountId).
		Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrAccountNotFound
	}

	cursor := accountId
	for level := 1; level <= maxDepth; level++ {
		var edge models.ReferralEdge
		if err := s.DB.Where("child_id = ?", cursor).First(&edge).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break
			}
			return nil, err
		}
		chain = append(chain, Ancestor{AccountId: edge.SponsorId, Level: level})
		cursor = edge.SponsorId
	}
	return chain, nil
}

// DescendantTree builds the downline of an account up to maxDepth levels.
// The tree is built breadth first with one query per level so deep or wide
// downlines cannot blow the stack.
func (s *ReferralService) DescendantTree(accountId int, maxDepth int) (*TreeNode, error) {
	var root models.Account
	if err := s.DB.Where("id = ?", accountId).First(&root).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	rootNode := &TreeNode{
		AccountId: root.ID,
		Username:  root.Username,
		Level:     0,
		Activated: root.Activated,
		Children:  []*TreeNode{},
	}

	frontier := map[int]*TreeNode{root.ID: rootNode}
	for level := 1; level <= maxDepth && len(frontier) > 0; level++ {
		parentIds := make([]int, 0, len(frontier))
		for id := range frontier {
			parentIds = append(parentIds, id)
		}

		var edges []models.ReferralEdge
		if err := s.DB.Where("sponsor_id IN ?", parentIds).Order("child_id asc").
			Find(&edges).Error; err != nil {
			return nil, err
		}
		if len(edges) == 0 {
			break
		}

		childIds := make([]int, 0, len(edges))
		sponsorOf := make(map[int]int, len(edges))
		for _, edge := range edges {
			childIds = append(childIds, edge.ChildId)
			sponsorOf[edge.ChildId] = edge.SponsorId
		}

		var children []models.Account
		if err := s.DB.Where("id IN ?", childIds).Order("id asc").Find(&children).Error; err != nil {
			return nil, err
		}

		next := make(map[int]*TreeNode, len(children))
		for _, child := range children {
			node := &TreeNode{
				AccountId: child.ID,
				Username:  child.Username,
				Level:     level,
				Activated: child.Activated,
				Children:  []*TreeNode{},
			}
			parent := frontier[sponsorOf[child.ID]]
			parent.Children = append(parent.Children, node)
			next[child.ID] = node
		}
		frontier = next
	}
	return rootNode, nil
}

// DirectReferralCount counts accounts directly sponsored by the account.
// Edges are written at activation, so the count is activated members only.
func (s *ReferralService) DirectReferralCount(accountId int) (int64, error) {
	var count int64
	err := s.DB.Model(&models.ReferralEdge{}).
		Where("sponsor_id = ?", accountId).
		Count(&count).Error
	return count, err
}

// TeamSize counts all descendants of the account across every level.
func (s *ReferralService) TeamSize(accountId int) (int64, error) {
	var total int64
	frontier := []int{accountId}
	for len(frontier) > 0 {
		var edges []models.ReferralEdge
		if err := s.DB.Where("sponsor_id IN ?", frontier).Find(&edges).Error; err != nil {
			return 0, err
		}
		frontier = frontier[:0]
		for _, edge := range edges {
			total++
			frontier = append(frontier, edge.ChildId)
		}
	}
	return total, nil
}

type DownlineLevel struct {
	Level    int             `json:"level"`
	Count    int64           `json:"count"`
	Earnings decimal.Decimal `json:"earnings"`
}

// DownlineByLevel summarises the account's downline per level: member count
// and completed commission earned from that level.
func (s *ReferralService) DownlineByLevel(accountId int, maxDepth int) ([]DownlineLevel, error) {
	levels := make([]DownlineLevel, 0, maxDepth)
	frontier := []int{accountId}

	for level := 1; level <= maxDepth; level++ {
		var edges []models.ReferralEdge
		if err := s.DB.Where("sponsor_id IN ?", frontier).Find(&edges).Error; err != nil {
			return nil, err
		}
		if len(edges) == 0 {
			break
		}
		frontier = frontier[:0]
		for _, edge := range edges {
			frontier = append(frontier, edge.ChildId)
		}

		var entries []models.LedgerEntry
		if err := s.DB.Where("account_id = ? AND kind = ? AND status = ? AND tier_level = ?",
			accountId, models.EntryCommission, models.EntryCompleted, level).
			Find(&entries).Error; err != nil {
			return nil, err
		}
		earnings := decimal.Zero
		for _, entry := range entries {
			earnings = earnings.Add(entry.Amount)
		}

		levels = append(levels, DownlineLevel{
			Level:    level,
			Count:    int64(len(frontier)),
			Earnings: earnings,
		})
	}
	return levels, nil
}
