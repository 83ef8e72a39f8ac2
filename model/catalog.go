package model

// EffectParam mirrors one AttachEffectParam row.
type EffectParam struct {
	ID              uint32 `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CompatibilityID int32  `gorm:"not null" json:"compatibility_id"`
	AttachTextID    int32  `gorm:"not null" json:"attach_text_id"`
	OverrideEffect  int64  `gorm:"not null" json:"override_effect_id"`
}

// PoolEntry mirrors one AttachEffectTableParam row: an effect listed in a pool
// with its base and DLC roll weights.
type PoolEntry struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	PoolID    int32  `gorm:"index:idx_pool_effect;not null" json:"pool_id"`
	EffectID  uint32 `gorm:"index:idx_pool_effect;index:idx_effect;not null" json:"effect_id"`
	Weight    int32  `gorm:"not null" json:"chance_weight"`
	WeightDLC int32  `gorm:"not null" json:"chance_weight_dlc"`
}

// RelicParam mirrors one EquipParamAntique row.
type RelicParam struct {
	ID      uint32 `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Color   uint8  `gorm:"not null" json:"relic_color"`
	Deep    bool   `gorm:"not null;default:false" json:"is_deep_relic"`
	Effect1 int32  `gorm:"not null" json:"effect_pool_1"`
	Effect2 int32  `gorm:"not null" json:"effect_pool_2"`
	Effect3 int32  `gorm:"not null" json:"effect_pool_3"`
	Curse1  int32  `gorm:"not null" json:"curse_pool_1"`
	Curse2  int32  `gorm:"not null" json:"curse_pool_2"`
	Curse3  int32  `gorm:"not null" json:"curse_pool_3"`
}

// VesselParam mirrors one AntiqueStandParam row.
type VesselParam struct {
	ID         uint32 `gorm:"primaryKey;autoIncrement:false" json:"id"`
	HeroType   uint8  `gorm:"not null" json:"hero_type"`
	GoodsID    uint32 `gorm:"index;not null" json:"goods_id"`
	Slot1      uint8  `json:"relic_slot_1"`
	Slot2      uint8  `json:"relic_slot_2"`
	Slot3      uint8  `json:"relic_slot_3"`
	DeepSlot1  uint8  `json:"deep_relic_slot_1"`
	DeepSlot2  uint8  `json:"deep_relic_slot_2"`
	DeepSlot3  uint8  `json:"deep_relic_slot_3"`
	UnlockFlag uint32 `json:"unlock_flag"`
}
