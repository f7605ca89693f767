// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// RecycleEntry is a soft-deleted item. Its ID is independent of the
// item id so the snapshot can be restored after the id is reused.
type RecycleEntry struct {
	ID        string    `json:"id"`
	Item      Item      `json:"item"`
	DeletedBy string    `json:"deletedBy"`
	DeletedAt time.Time `json:"deletedAt"`
}
