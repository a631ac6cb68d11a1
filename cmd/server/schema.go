package main

var schema = []string{
	// version 1
	`
CREATE TABLE IF NOT EXISTS articles (
  id text primary key,
  url text not null,
  title text,
  fullText text not null,
  fetched datetime default current_timestamp
);

CREATE TABLE IF NOT EXISTS notes (
  id text primary key,
  url text not null,
  title text,
  contents text not null,
  detailed boolean default false,
  saved datetime default current_timestamp
);

CREATE TABLE IF NOT EXISTS usage (
  timestamp datetime default current_timestamp,
  id text,
  kind text,
  lengthIn integer,
  lengthOut integer,
  tokensIn integer,
  tokensOut integer
);
	`,
	// version 2
	`
CREATE INDEX IF NOT EXISTS notes_saved ON notes(saved DESC);
CREATE INDEX IF NOT EXISTS usage_id ON usage(id);
	`,
}
