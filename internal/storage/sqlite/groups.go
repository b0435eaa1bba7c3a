package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tripsettle/internal/models"
	"github.com/mmynk/tripsettle/internal/storage"
)

// CreateGroup persists a new group and its members. It fails with
// storage.ErrConflict when a member already belongs to another group of
// the trip.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO trip_groups (id, trip_id, name, avatar, created_at) VALUES (?, ?, ?, ?, ?)",
		group.ID, group.TripID, group.Name, nullString(group.Avatar), group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for i, memberID := range group.MemberIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, trip_id, participant_id, position) VALUES (?, ?, ?, ?)",
			group.ID, group.TripID, memberID, i,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("participant %s is already in a group: %w", memberID, storage.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID, including its member IDs.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	var avatar sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, trip_id, name, avatar, created_at FROM trip_groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.TripID, &group.Name, &avatar, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %w: %s", storage.ErrNotFound, groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	group.Avatar = avatar.String

	members, err := s.groupMembers(ctx, []string{group.ID})
	if err != nil {
		return nil, err
	}
	group.MemberIDs = members[group.ID]
	return group, nil
}

// ListGroups returns all groups of a trip.
func (s *SQLiteStore) ListGroups(ctx context.Context, tripID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, trip_id, name, avatar, created_at FROM trip_groups WHERE trip_id = ? ORDER BY created_at, rowid",
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	var ids []string
	for rows.Next() {
		group := &models.Group{}
		var avatar sql.NullString
		if err := rows.Scan(&group.ID, &group.TripID, &group.Name, &avatar, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		group.Avatar = avatar.String
		groups = append(groups, group)
		ids = append(ids, group.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	members, err := s.groupMembers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		g.MemberIDs = members[g.ID]
	}
	return groups, nil
}

// DeleteGroup removes a group by ID.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trip_groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("group %w: %s", storage.ErrNotFound, groupID)
	}
	return nil
}

// groupMembers loads member IDs for the given groups, keyed by group ID.
func (s *SQLiteStore) groupMembers(ctx context.Context, groupIDs []string) (map[string][]string, error) {
	members := make(map[string][]string, len(groupIDs))
	if len(groupIDs) == 0 {
		return members, nil
	}

	args := make([]interface{}, len(groupIDs))
	for i, id := range groupIDs {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_id, participant_id FROM group_members
		 WHERE group_id IN (?`+repeatPlaceholder(len(groupIDs)-1)+`)
		 ORDER BY group_id, position`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var groupID, participantID string
		if err := rows.Scan(&groupID, &participantID); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members[groupID] = append(members[groupID], participantID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return members, nil
}
