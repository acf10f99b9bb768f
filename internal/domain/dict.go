package domain

// Dict is one row of sys_dict.
type Dict struct {
	ID          string `db:"id" json:"id"`
	DictCode    string `db:"dict_code" json:"dictCode"`
	DictName    string `db:"dict_name" json:"dictName"`
	Description string `db:"description" json:"description,omitempty"`
	Deleted     int    `db:"deleted" json:"deleted"`
	Type        int    `db:"type" json:"type"`
}

// DictItem is one row of sys_dict_item, keyed by its dictionary code.
type DictItem struct {
	ID          string `db:"id" json:"id"`
	ItemCode    string `db:"item_code" json:"itemCode"`
	ItemName    string `db:"item_name" json:"itemName"`
	DictCode    string `db:"dict_code" json:"dictCode"`
	Description string `db:"description" json:"description,omitempty"`
	SortOrder   int    `db:"sort_order" json:"sortOrder"`
	Deleted     int    `db:"deleted" json:"deleted"`
}
