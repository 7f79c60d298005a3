package database

import (
	"context"
	"log"
)

// CreateTables creates all necessary database tables
func (db *DB) CreateTables(ctx context.Context) error {
	log.Println("Creating database tables...")

	leadsTable := `
	CREATE TABLE IF NOT EXISTS leads (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		author VARCHAR(255) NOT NULL,
		platform VARCHAR(50) NOT NULL,
		comment TEXT NOT NULL,
		video_url TEXT,
		comment_url TEXT,
		intent_type VARCHAR(50) NOT NULL,
		pain_intensity INT NOT NULL DEFAULT 0,
		readiness_score INT NOT NULL DEFAULT 0,
		practice_mention VARCHAR(255),
		confidence INT NOT NULL DEFAULT 0,
		reasoning TEXT,
		lead_hash VARCHAR(64) NOT NULL UNIQUE,
		scraped_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_leads_hash ON leads(lead_hash);
	CREATE INDEX IF NOT EXISTS idx_leads_scraped ON leads(scraped_date DESC);
	CREATE INDEX IF NOT EXISTS idx_leads_intent_type ON leads(intent_type);
	`

	threadsTable := `
	CREATE TABLE IF NOT EXISTS conversation_threads (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		lead_id UUID NOT NULL UNIQUE,
		author VARCHAR(255),
		original_comment TEXT,
		comment_url TEXT,
		video_url TEXT,
		conversation_stage INT NOT NULL DEFAULT 0,
		full_history TEXT NOT NULL DEFAULT '',
		status VARCHAR(50) NOT NULL DEFAULT 'active',
		pain_type VARCHAR(50),
		readiness_score INT NOT NULL DEFAULT 0,
		resources_shared TEXT[] NOT NULL DEFAULT '{}',
		last_reply_date TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (lead_id) REFERENCES leads(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_threads_status ON conversation_threads(status);
	`

	repliesTable := `
	CREATE TABLE IF NOT EXISTS pending_replies (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		thread_id UUID NOT NULL,
		their_last_message TEXT,
		draft_text TEXT NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'pending',
		responder VARCHAR(255),
		suggested_resource VARCHAR(255),
		notes TEXT,
		generated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		decided_at TIMESTAMP,
		posted_at TIMESTAMP,
		FOREIGN KEY (thread_id) REFERENCES conversation_threads(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_replies_status ON pending_replies(status);
	-- at most one undecided/unposted reply per thread
	CREATE UNIQUE INDEX IF NOT EXISTS idx_replies_open_per_thread
		ON pending_replies(thread_id) WHERE status IN ('pending', 'approved');
	`

	resourcesTable := `
	CREATE TABLE IF NOT EXISTS resources (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(255) NOT NULL UNIQUE,
		link TEXT NOT NULL,
		description TEXT,
		pain_types TEXT[] NOT NULL DEFAULT '{}',
		min_readiness INT NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		times_shared INT NOT NULL DEFAULT 0
	);
	`

	tables := []string{leadsTable, threadsTable, repliesTable, resourcesTable}

	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, table); err != nil {
			return err
		}
	}

	log.Println("All tables created successfully")
	return nil
}
