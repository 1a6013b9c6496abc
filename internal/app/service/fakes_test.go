package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sort"
	"strings"

	"forum_board/internal/common"
	"forum_board/internal/domain/model"
	"forum_board/internal/domain/repository"
)

// In-memory fakes for the repository interfaces. The fakes taking a *sql.Tx
// ignore it and append to a shared call log so tests can assert cascade
// ordering; the stub driver below produces transactions that do nothing.

type fakeUserRepo struct {
	users map[string]*model.User // by ID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	for _, existing := range f.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return common.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	if user, ok := f.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) List(_ context.Context) ([]model.User, error) {
	var users []model.User
	for _, user := range f.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, user *model.User) error {
	stored, ok := f.users[user.ID]
	if !ok {
		return common.ErrNotFound
	}
	stored.Email = user.Email
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.Bio = user.Bio
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, hashedPassword string) error {
	stored, ok := f.users[id]
	if !ok {
		return common.ErrNotFound
	}
	stored.HashedPassword = hashedPassword
	return nil
}

func (f *fakeUserRepo) SoftDelete(_ context.Context, id string) error {
	stored, ok := f.users[id]
	if !ok {
		return common.ErrNotFound
	}
	stored.IsDeleted = true
	return nil
}

type fakeCategoryRepo struct {
	categories map[string]*model.Category // by ID
	topics     map[string]bool            // category ID -> has topics
	calls      *[]string
}

func newFakeCategoryRepo(calls *[]string) *fakeCategoryRepo {
	return &fakeCategoryRepo{
		categories: make(map[string]*model.Category),
		topics:     make(map[string]bool),
		calls:      calls,
	}
}

func (f *fakeCategoryRepo) Create(_ context.Context, category *model.Category) error {
	for _, existing := range f.categories {
		if existing.Name == category.Name {
			return common.Errorf("category with that name already exists: %w", common.ErrConflict)
		}
	}
	clone := *category
	f.categories[category.ID] = &clone
	return nil
}

func (f *fakeCategoryRepo) FindByID(_ context.Context, id string) (*model.Category, error) {
	if category, ok := f.categories[id]; ok {
		clone := *category
		return &clone, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeCategoryRepo) FindByName(_ context.Context, name string) (*model.Category, error) {
	for _, category := range f.categories {
		if category.Name == name {
			clone := *category
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeCategoryRepo) List(_ context.Context, filter repository.CategoryFilter) ([]model.Category, error) {
	var categories []model.Category
	for _, category := range f.categories {
		if filter.PublicOnly && category.IsPrivate {
			continue
		}
		categories = append(categories, *category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (f *fakeCategoryRepo) UpdateName(_ context.Context, id, name, slug string) error {
	category, ok := f.categories[id]
	if !ok {
		return common.ErrNotFound
	}
	category.Name = name
	category.Slug = slug
	return nil
}

func (f *fakeCategoryRepo) SetLocked(_ context.Context, id string, locked bool) error {
	category, ok := f.categories[id]
	if !ok {
		return common.ErrNotFound
	}
	category.IsLocked = locked
	return nil
}

func (f *fakeCategoryRepo) SetPrivate(_ context.Context, id string, private bool) error {
	category, ok := f.categories[id]
	if !ok {
		return common.ErrNotFound
	}
	category.IsPrivate = private
	return nil
}

func (f *fakeCategoryRepo) HasTopics(_ context.Context, id string) (bool, error) {
	return f.topics[id], nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, _ *sql.Tx, id string) error {
	if _, ok := f.categories[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.categories, id)
	*f.calls = append(*f.calls, "categories.Delete")
	return nil
}

type fakePermissionRepo struct {
	grants map[string]bool // userID|categoryID -> write access
	calls  *[]string
}

func newFakePermissionRepo(calls *[]string) *fakePermissionRepo {
	return &fakePermissionRepo{grants: make(map[string]bool), calls: calls}
}

func grantKey(userID, categoryID string) string {
	return userID + "|" + categoryID
}

func (f *fakePermissionRepo) Upsert(_ context.Context, grant *model.PermissionGrant) (bool, error) {
	key := grantKey(grant.UserID, grant.CategoryID)
	_, exists := f.grants[key]
	f.grants[key] = grant.WriteAccess
	return !exists, nil
}

func (f *fakePermissionRepo) Delete(_ context.Context, userID, categoryID string) error {
	key := grantKey(userID, categoryID)
	if _, ok := f.grants[key]; !ok {
		return common.Errorf("user has no access to this category: %w", common.ErrNotFound)
	}
	delete(f.grants, key)
	return nil
}

func (f *fakePermissionRepo) AccessLevel(_ context.Context, userID, categoryID string) (model.AccessLevel, error) {
	writeAccess, ok := f.grants[grantKey(userID, categoryID)]
	if !ok {
		return model.LevelNone, nil
	}
	if writeAccess {
		return model.LevelWrite, nil
	}
	return model.LevelRead, nil
}

func (f *fakePermissionRepo) ListPrivilegedUsers(_ context.Context, categoryID string) ([]model.PrivilegedUser, error) {
	var users []model.PrivilegedUser
	for key, writeAccess := range f.grants {
		userID, catID, _ := strings.Cut(key, "|")
		if catID == categoryID {
			users = append(users, model.PrivilegedUser{UserID: userID, WriteAccess: writeAccess})
		}
	}
	return users, nil
}

func (f *fakePermissionRepo) DeleteByCategory(_ context.Context, _ *sql.Tx, categoryID string) error {
	for key := range f.grants {
		if _, catID, _ := strings.Cut(key, "|"); catID == categoryID {
			delete(f.grants, key)
		}
	}
	*f.calls = append(*f.calls, "permissions.DeleteByCategory")
	return nil
}

type fakeTopicRepo struct {
	topics map[string]*model.Topic // by ID
	calls  *[]string
}

func newFakeTopicRepo(calls *[]string) *fakeTopicRepo {
	return &fakeTopicRepo{topics: make(map[string]*model.Topic), calls: calls}
}

func (f *fakeTopicRepo) Create(_ context.Context, topic *model.Topic) error {
	clone := *topic
	f.topics[topic.ID] = &clone
	return nil
}

func (f *fakeTopicRepo) FindByID(_ context.Context, id string) (*model.Topic, error) {
	if topic, ok := f.topics[id]; ok {
		clone := *topic
		return &clone, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeTopicRepo) List(_ context.Context, filter repository.TopicFilter) ([]model.Topic, error) {
	var topics []model.Topic
	for _, topic := range f.topics {
		if filter.CategoryName != "" && topic.CategoryName != filter.CategoryName {
			continue
		}
		topics = append(topics, *topic)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Title < topics[j].Title })
	return topics, nil
}

func (f *fakeTopicRepo) UpdateTitle(_ context.Context, id, title string) error {
	topic, ok := f.topics[id]
	if !ok {
		return common.ErrNotFound
	}
	topic.Title = title
	return nil
}

func (f *fakeTopicRepo) SetBestReply(_ context.Context, id, replyID string) error {
	topic, ok := f.topics[id]
	if !ok {
		return common.ErrNotFound
	}
	topic.BestReplyID = &replyID
	return nil
}

func (f *fakeTopicRepo) SetLocked(_ context.Context, id string, locked bool) error {
	topic, ok := f.topics[id]
	if !ok {
		return common.ErrNotFound
	}
	topic.IsLocked = locked
	return nil
}

func (f *fakeTopicRepo) ClearBestReply(_ context.Context, _ *sql.Tx, replyID string) error {
	for _, topic := range f.topics {
		if topic.BestReplyID != nil && *topic.BestReplyID == replyID {
			topic.BestReplyID = nil
		}
	}
	*f.calls = append(*f.calls, "topics.ClearBestReply")
	return nil
}

func (f *fakeTopicRepo) ClearBestReplies(_ context.Context, _ *sql.Tx, categoryID string) error {
	for _, topic := range f.topics {
		if topic.CategoryID == categoryID {
			topic.BestReplyID = nil
		}
	}
	*f.calls = append(*f.calls, "topics.ClearBestReplies")
	return nil
}

func (f *fakeTopicRepo) DeleteByCategory(_ context.Context, _ *sql.Tx, categoryID string) error {
	for id, topic := range f.topics {
		if topic.CategoryID == categoryID {
			delete(f.topics, id)
		}
	}
	*f.calls = append(*f.calls, "topics.DeleteByCategory")
	return nil
}

type fakeReplyRepo struct {
	replies map[string]*model.Reply // by ID
	calls   *[]string
}

func newFakeReplyRepo(calls *[]string) *fakeReplyRepo {
	return &fakeReplyRepo{replies: make(map[string]*model.Reply), calls: calls}
}

func (f *fakeReplyRepo) Create(_ context.Context, reply *model.Reply) error {
	clone := *reply
	f.replies[reply.ID] = &clone
	return nil
}

func (f *fakeReplyRepo) FindByID(_ context.Context, id string) (*model.Reply, error) {
	if reply, ok := f.replies[id]; ok {
		clone := *reply
		return &clone, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeReplyRepo) ListByTopic(_ context.Context, topicID string) ([]model.Reply, error) {
	var replies []model.Reply
	for _, reply := range f.replies {
		if reply.TopicID == topicID {
			replies = append(replies, *reply)
		}
	}
	sort.Slice(replies, func(i, j int) bool { return replies[i].ID < replies[j].ID })
	return replies, nil
}

func (f *fakeReplyRepo) UpdateContent(_ context.Context, id, content string) error {
	reply, ok := f.replies[id]
	if !ok {
		return common.ErrNotFound
	}
	reply.Content = content
	return nil
}

func (f *fakeReplyRepo) Delete(_ context.Context, _ *sql.Tx, id string) error {
	if _, ok := f.replies[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.replies, id)
	*f.calls = append(*f.calls, "replies.Delete")
	return nil
}

func (f *fakeReplyRepo) DeleteByCategory(_ context.Context, _ *sql.Tx, _ string) error {
	*f.calls = append(*f.calls, "replies.DeleteByCategory")
	return nil
}

type fakeVoteRepo struct {
	votes map[string]model.VoteType // userID|replyID
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{votes: make(map[string]model.VoteType)}
}

func (f *fakeVoteRepo) Find(_ context.Context, userID, replyID string) (*model.Vote, error) {
	voteType, ok := f.votes[grantKey(userID, replyID)]
	if !ok {
		return nil, nil
	}
	return &model.Vote{UserID: userID, ReplyID: replyID, Type: voteType}, nil
}

func (f *fakeVoteRepo) Insert(_ context.Context, vote *model.Vote) error {
	f.votes[grantKey(vote.UserID, vote.ReplyID)] = vote.Type
	return nil
}

func (f *fakeVoteRepo) Update(_ context.Context, vote *model.Vote) error {
	f.votes[grantKey(vote.UserID, vote.ReplyID)] = vote.Type
	return nil
}

func (f *fakeVoteRepo) Delete(_ context.Context, userID, replyID string) error {
	delete(f.votes, grantKey(userID, replyID))
	return nil
}

// stubDriver lets services that open transactions run against fakes: the
// produced transactions succeed and do nothing.
type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

func init() {
	sql.Register("stub", stubDriver{})
}

func newStubDB() *sql.DB {
	db, err := sql.Open("stub", "")
	if err != nil {
		panic(err)
	}
	return db
}
