// Package snapshot persists the flattened feed tables in SQLite. Each
// fetch run replaces the previous snapshot wholesale; the recommendation
// path only ever reads a consistent, fully-loaded snapshot.
package snapshot

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"resonance/internal/model"
)

// DB wraps the SQLite snapshot database.
type DB struct{ sql *sql.DB }

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		return nil, err
	}
	db := &DB{sql: d}
	if err := db.migrate(); err != nil {
		_ = d.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS users (
	  id INTEGER PRIMARY KEY,
	  first_name TEXT, last_name TEXT, username TEXT, email TEXT, role TEXT,
	  profile_url TEXT, bio TEXT, website_url TEXT, instagram_url TEXT,
	  youtube_url TEXT, tictok_url TEXT, is_verified_legacy INTEGER,
	  referral_code TEXT, has_wallet INTEGER, last_login TEXT,
	  share_count INTEGER, post_count INTEGER, following_count INTEGER,
	  follower_count INTEGER, is_verified INTEGER, is_online INTEGER,
	  latitude REAL, longitude REAL
	);
	CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
	CREATE TABLE IF NOT EXISTS posts (
	  id INTEGER PRIMARY KEY,
	  slug TEXT, title TEXT, identifier TEXT,
	  comment_count INTEGER, upvote_count INTEGER, view_count INTEGER,
	  rating_count INTEGER, average_rating REAL,
	  overall_sentiment TEXT, action_descriptor TEXT, transcription TEXT,
	  trait_one TEXT, trait_two TEXT, trait_three TEXT,
	  ord INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS liked_posts (
	  id INTEGER PRIMARY KEY,
	  post_id INTEGER, user_id INTEGER, liked_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_liked_user ON liked_posts(user_id);
	CREATE TABLE IF NOT EXISTS ratings (
	  id INTEGER PRIMARY KEY,
	  post_id INTEGER, user_id INTEGER, rating_percent INTEGER, rated_at TEXT
	);
	CREATE TABLE IF NOT EXISTS viewed_posts (
	  id INTEGER PRIMARY KEY,
	  post_id INTEGER, user_id INTEGER, viewed_at TEXT
	);
	CREATE TABLE IF NOT EXISTS fetch_runs (
	  run_id TEXT NOT NULL,
	  feed TEXT NOT NULL,
	  row_count INTEGER NOT NULL,
	  fetched_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_fetch_runs_at ON fetch_runs(fetched_at);
	`)
	return err
}

func (d *DB) replace(ctx context.Context, table string, insert func(tx *sql.Tx) error) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := insert(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ReplaceUsers overwrites the users table with the given snapshot rows.
func (d *DB) ReplaceUsers(ctx context.Context, users []model.User) error {
	return d.replace(ctx, "users", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO users VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, u := range users {
			if _, err := stmt.ExecContext(ctx, u.ID, u.FirstName, u.LastName, u.Username, u.Email, u.Role,
				u.ProfileURL, u.Bio, u.WebsiteURL, u.InstagramURL, u.YoutubeURL, u.TiktokURL, u.VerifiedLegacy,
				u.ReferralCode, u.HasWallet, u.LastLogin, u.ShareCount, u.PostCount, u.FollowingCount,
				u.FollowerCount, u.Verified, u.IsOnline, u.Latitude, u.Longitude); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *DB) ReplacePosts(ctx context.Context, posts []model.Post) error {
	return d.replace(ctx, "posts", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO posts VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		// ord keeps the catalog's original feed order; ranking tie-breaks
		// depend on it.
		for i, p := range posts {
			if _, err := stmt.ExecContext(ctx, p.ID, p.Slug, p.Title, p.Identifier,
				p.CommentCount, p.UpvoteCount, p.ViewCount, p.RatingCount, p.AverageRating,
				p.OverallSentiment, p.ActionDescriptor, p.Transcription,
				p.TraitOne, p.TraitTwo, p.TraitThree, i); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *DB) ReplaceLikedPosts(ctx context.Context, likes []model.LikedPost) error {
	return d.replace(ctx, "liked_posts", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO liked_posts VALUES(?,?,?,?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, l := range likes {
			if _, err := stmt.ExecContext(ctx, l.ID, l.PostID, l.UserID, l.LikedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *DB) ReplaceRatings(ctx context.Context, ratings []model.Rating) error {
	return d.replace(ctx, "ratings", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO ratings VALUES(?,?,?,?,?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range ratings {
			if _, err := stmt.ExecContext(ctx, r.ID, r.PostID, r.UserID, r.RatingPercent, r.RatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *DB) ReplaceViewedPosts(ctx context.Context, views []model.ViewedPost) error {
	return d.replace(ctx, "viewed_posts", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO viewed_posts VALUES(?,?,?,?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, v := range views {
			if _, err := stmt.ExecContext(ctx, v.ID, v.PostID, v.UserID, v.ViewedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *DB) LoadUsers(ctx context.Context) ([]model.User, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT id, first_name, last_name, username, email, role,
		profile_url, bio, website_url, instagram_url, youtube_url, tictok_url, is_verified_legacy,
		referral_code, has_wallet, last_login, share_count, post_count, following_count,
		follower_count, is_verified, is_online, latitude, longitude FROM users ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Email, &u.Role,
			&u.ProfileURL, &u.Bio, &u.WebsiteURL, &u.InstagramURL, &u.YoutubeURL, &u.TiktokURL, &u.VerifiedLegacy,
			&u.ReferralCode, &u.HasWallet, &u.LastLogin, &u.ShareCount, &u.PostCount, &u.FollowingCount,
			&u.FollowerCount, &u.Verified, &u.IsOnline, &u.Latitude, &u.Longitude); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (d *DB) LoadPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT id, slug, title, identifier,
		comment_count, upvote_count, view_count, rating_count, average_rating,
		overall_sentiment, action_descriptor, transcription, trait_one, trait_two, trait_three
		FROM posts ORDER BY ord`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &p.Identifier,
			&p.CommentCount, &p.UpvoteCount, &p.ViewCount, &p.RatingCount, &p.AverageRating,
			&p.OverallSentiment, &p.ActionDescriptor, &p.Transcription,
			&p.TraitOne, &p.TraitTwo, &p.TraitThree); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (d *DB) LoadLikedPosts(ctx context.Context) ([]model.LikedPost, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT id, post_id, user_id, liked_at FROM liked_posts ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.LikedPost
	for rows.Next() {
		var l model.LikedPost
		if err := rows.Scan(&l.ID, &l.PostID, &l.UserID, &l.LikedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (d *DB) LoadRatings(ctx context.Context) ([]model.Rating, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT id, post_id, user_id, rating_percent, rated_at FROM ratings ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Rating
	for rows.Next() {
		var r model.Rating
		if err := rows.Scan(&r.ID, &r.PostID, &r.UserID, &r.RatingPercent, &r.RatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) LoadViewedPosts(ctx context.Context) ([]model.ViewedPost, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT id, post_id, user_id, viewed_at FROM viewed_posts ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ViewedPost
	for rows.Next() {
		var v model.ViewedPost
		if err := rows.Scan(&v.ID, &v.PostID, &v.UserID, &v.ViewedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// RecordFetchRun logs one feed's row count under a run id.
func (d *DB) RecordFetchRun(ctx context.Context, runID, feed string, rowCount int, at time.Time) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO fetch_runs(run_id, feed, row_count, fetched_at) VALUES(?,?,?,?)`,
		runID, feed, rowCount, at.Unix())
	return err
}

// Counts returns row counts per snapshot table.
func (d *DB) Counts(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, table := range []string{"users", "posts", "liked_posts", "ratings", "viewed_posts"} {
		row := d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table)
		var n int64
		if err := row.Scan(&n); err != nil {
			return nil, err
		}
		out[table] = n
	}
	return out, nil
}
