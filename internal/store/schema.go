package store

var schema = []string{
	`CREATE TABLE IF NOT EXISTS nfts (
		id                 TEXT PRIMARY KEY,
		name               TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		external_link      TEXT NOT NULL DEFAULT '',
		collection_id      TEXT NOT NULL,
		blockchain         TEXT NOT NULL,
		sale_type          TEXT NOT NULL,
		price              DOUBLE PRECISION,
		minimum_offer      DOUBLE PRECISION,
		currency           TEXT NOT NULL,
		royalty_percentage DOUBLE PRECISION NOT NULL,
		supply             INTEGER NOT NULL DEFAULT 1,
		lazy_mint          BOOLEAN NOT NULL DEFAULT FALSE,
		freeze_metadata    BOOLEAN NOT NULL DEFAULT FALSE,
		image_url          TEXT NOT NULL DEFAULT '',
		content_urls       JSONB NOT NULL DEFAULT '[]',
		metadata           JSONB NOT NULL DEFAULT '{}',
		listed_at          TIMESTAMPTZ NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL,
		auction_id         TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS auctions (
		id            TEXT PRIMARY KEY,
		nft_id        TEXT NOT NULL REFERENCES nfts(id),
		start_price   DOUBLE PRECISION NOT NULL,
		reserve_price DOUBLE PRECISION,
		currency      TEXT NOT NULL,
		duration_days INTEGER NOT NULL,
		start_time    TIMESTAMPTZ NOT NULL,
		end_time      TIMESTAMPTZ NOT NULL,
		status        TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS auctions_nft_id_idx ON auctions (nft_id)`,
	`CREATE TABLE IF NOT EXISTS kv_entries (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		expires_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}
