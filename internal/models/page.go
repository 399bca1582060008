package models

import "github.com/KirkDiggler/remindme/internal/snowflake"

// PageField is one embed field of a listing page
type PageField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Page is one embed worth of fields
type Page struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Fields      []PageField `json:"fields"`
}

// PageSession is a paginated listing owned by the user who requested it
type PageSession struct {
	ID      string       `json:"id"`
	OwnerID snowflake.ID `json:"owner_id"`
	Pages   []Page       `json:"pages"`
}
