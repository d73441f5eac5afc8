package repository

import (
	"errors"
	"testing"

	"github.com/lib/pq"

	"github.com/hitoshi/cinefeed/internal/model"
)

// PostgresReviewRepoはReviewRepositoryインターフェースを満たすことを検証
func TestPostgresReviewRepo_ImplementsInterface(t *testing.T) {
	var _ ReviewRepository = (*PostgresReviewRepo)(nil)
}

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// PostgresIdentityRepoはIdentityRepositoryインターフェースを満たすことを検証
func TestPostgresIdentityRepo_ImplementsInterface(t *testing.T) {
	var _ IdentityRepository = (*PostgresIdentityRepo)(nil)
}

// PostgresSessionRepoはSessionRepositoryインターフェースを満たすことを検証
func TestPostgresSessionRepo_ImplementsInterface(t *testing.T) {
	var _ SessionRepository = (*PostgresSessionRepo)(nil)
}

// NewPostgresReviewRepoが正しく初期化されることを検証
func TestNewPostgresReviewRepo_Initializes(t *testing.T) {
	repo := NewPostgresReviewRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// センチネルエラーがerrors.Isで判別可能であることを検証
func TestSentinelErrors_Distinguishable(t *testing.T) {
	if errors.Is(ErrDuplicateReview, ErrDuplicateVote) {
		t.Error("ErrDuplicateReviewとErrDuplicateVoteが同一視されています")
	}
	if errors.Is(ErrDuplicateVote, ErrReviewNotFound) {
		t.Error("ErrDuplicateVoteとErrReviewNotFoundが同一視されています")
	}
}

// 投票記帳時のSQLSTATEがセンチネルエラーへ変換されることを検証。
// 不正なUUID形式のレビューID（22P02）は未存在扱いとし、500にしない。
func TestVoteInsertError_MapsSQLStates(t *testing.T) {
	cases := []struct {
		name string
		code string
		want error
	}{
		{"一意制約違反は二重投票", "23505", ErrDuplicateVote},
		{"外部キー違反はレビュー未存在", "23503", ErrReviewNotFound},
		{"不正なUUID形式はレビュー未存在", "22P02", ErrReviewNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := voteInsertError(&pq.Error{Code: pq.ErrorCode(tc.code)})
			if !errors.Is(err, tc.want) {
				t.Errorf("SQLSTATE %s のエラー = %v, want %v", tc.code, err, tc.want)
			}
		})
	}
}

// 未知のDBエラーはラップされ、元のエラーがerrors.Isで辿れることを検証
func TestVoteInsertError_WrapsUnknownError(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := voteInsertError(cause)
	if !errors.Is(err, cause) {
		t.Errorf("ラップされたエラーから元のエラーが辿れません: %v", err)
	}
	if errors.Is(err, ErrReviewNotFound) || errors.Is(err, ErrDuplicateVote) {
		t.Errorf("未知のエラーがセンチネルエラーへ変換されています: %v", err)
	}
}

// 投票方向ごとに加算対象カラムが異なることの期待動作
// （DB接続なしでロジックのみ検証）
func TestCastVote_DirectionColumn_Concept(t *testing.T) {
	cases := []struct {
		direction model.VoteDirection
		column    string
	}{
		{model.VoteDirectionUp, "upvotes"},
		{model.VoteDirectionDown, "downvotes"},
	}

	for _, tc := range cases {
		column := "upvotes"
		if tc.direction == model.VoteDirectionDown {
			column = "downvotes"
		}
		if column != tc.column {
			t.Errorf("direction %q の加算カラム = %q, want %q", tc.direction, column, tc.column)
		}
	}
}
