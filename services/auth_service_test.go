package services

import (
	"testing"
	"time"

	"gopolls/models"
)

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	service := NewAuthService(db, "test-secret", nil)

	resp, err := service.Register(&RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("Expected a token after registration")
	}
	if resp.User.PasswordHash == "correct horse battery" {
		t.Error("Password must not be stored in plain text")
	}

	login, err := service.Login(&LoginRequest{Username: "alice", Password: "correct horse battery"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.Token == "" {
		t.Error("Expected a token after login")
	}
	if login.User.ID != resp.User.ID {
		t.Errorf("Expected user %d, got %d", resp.User.ID, login.User.ID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := setupTestDB(t)
	service := NewAuthService(db, "test-secret", nil)

	if _, err := service.Register(&RegisterRequest{Username: "alice", Password: "correct horse battery"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := service.Login(&LoginRequest{Username: "alice", Password: "wrong"})
	assertCategory(t, err, CategoryAuthorization)

	_, err = service.Login(&LoginRequest{Username: "nobody", Password: "whatever"})
	assertCategory(t, err, CategoryAuthorization)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	service := NewAuthService(db, "test-secret", nil)

	if _, err := service.Register(&RegisterRequest{Username: "alice", Password: "correct horse battery"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := service.Register(&RegisterRequest{Username: "alice", Password: "another password"})
	assertCategory(t, err, CategoryValidation)

	if n := countRows(t, db, &models.User{}); n != 1 {
		t.Errorf("Expected 1 user, found %d", n)
	}
}

func TestProfileStats(t *testing.T) {
	db := setupTestDB(t)
	service := NewAuthService(db, "test-secret", nil)
	voteService := NewVoteService(db)

	owner := createTestUser(t, db, "alice")
	other := createTestUser(t, db, "bob")

	now := time.Now()
	mine := createTestPoll(t, db, owner.ID, now.Add(-time.Hour), now.Add(time.Hour), "A", "B")
	createTestPoll(t, db, owner.ID, now.Add(-2*time.Hour), now.Add(-time.Hour), "A", "B")
	theirs := createTestPoll(t, db, other.ID, now.Add(-time.Hour), now.Add(time.Hour), "X", "Y")

	// alice votes on bob's poll; bob votes on alice's
	if _, err := voteService.CastVote(owner.ID, theirs.ID, theirs.Choices[0].ID); err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}
	if _, err := voteService.CastVote(other.ID, mine.ID, mine.Choices[1].ID); err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}

	profile, err := service.Profile(owner.ID)
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}

	if profile.Stats.TotalPollsCreated != 2 {
		t.Errorf("Expected 2 polls created, got %d", profile.Stats.TotalPollsCreated)
	}
	if profile.Stats.ActivePolls != 1 {
		t.Errorf("Expected 1 active poll, got %d", profile.Stats.ActivePolls)
	}
	if profile.Stats.TotalVotesCast != 1 {
		t.Errorf("Expected 1 vote cast, got %d", profile.Stats.TotalVotesCast)
	}
	if profile.Stats.TotalVotesReceived != 1 {
		t.Errorf("Expected 1 vote received, got %d", profile.Stats.TotalVotesReceived)
	}
	if len(profile.RecentPolls) != 2 {
		t.Errorf("Expected 2 recent polls, got %d", len(profile.RecentPolls))
	}
}

func TestVotingHistory(t *testing.T) {
	db := setupTestDB(t)
	service := NewAuthService(db, "test-secret", nil)
	voteService := NewVoteService(db)

	owner := createTestUser(t, db, "alice")
	voter := createTestUser(t, db, "bob")

	now := time.Now()
	first := createTestPoll(t, db, owner.ID, now.Add(-time.Hour), now.Add(time.Hour), "A", "B")
	second := createTestPoll(t, db, owner.ID, now.Add(-time.Hour), now.Add(time.Hour), "X", "Y")

	if _, err := voteService.CastVote(voter.ID, first.ID, first.Choices[0].ID); err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}
	// Keep voted_at strictly ordered
	time.Sleep(5 * time.Millisecond)
	if _, err := voteService.CastVote(voter.ID, second.ID, second.Choices[1].ID); err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}

	votes, err := service.VotingHistory(voter.ID)
	if err != nil {
		t.Fatalf("VotingHistory failed: %v", err)
	}

	if len(votes) != 2 {
		t.Fatalf("Expected 2 votes, got %d", len(votes))
	}
	if votes[0].PollID != second.ID {
		t.Errorf("Expected newest vote first, got poll %d", votes[0].PollID)
	}
	if votes[0].Choice.Poll.ID != second.ID {
		t.Error("Expected the vote's poll to be preloaded")
	}
}
