// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY NOT NULL,
	blockNumber INTEGER NOT NULL,
	blockID BLOB(32) NOT NULL,
	blockTime INTEGER NOT NULL,
	commandIndex INTEGER NOT NULL,
	eventIndex INTEGER NOT NULL,
	name TEXT NOT NULL,
	validator INTEGER NOT NULL,
	account BLOB(20) NOT NULL,
	token BLOB(20) NOT NULL,
	amount TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS event_i0 ON event(blockTime);
CREATE INDEX IF NOT EXISTS event_i1 ON event(name, seq);
CREATE INDEX IF NOT EXISTS event_i2 ON event(validator, seq);
CREATE INDEX IF NOT EXISTS event_i3 ON event(account, seq);
CREATE INDEX IF NOT EXISTS event_i4 ON event(token, seq);
`
