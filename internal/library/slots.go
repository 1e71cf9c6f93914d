package library

// slotGroups maps a template slot id to the library slot tags that may fill it.
//
//nolint:gochecknoglobals // static mapping.
var slotGroups = map[string][]SlotTag{
	"upper_push": {SlotUpperPushHorizontal, SlotUpperPushVertical},
	"upper_pull": {SlotUpperPullVertical, SlotUpperPullHorizontal},
	"single_leg_or_core": {
		SlotSingleLegKneeDominant, SlotSingleLegHipDominant, SlotCoreAntiExtension, SlotCoreAntiRotation,
	},
	"single_leg": {SlotSingleLeg, SlotSingleLegHinge, SlotSingleLegKneeDominant, SlotSingleLegHipDominant},
	"core":       {SlotCoreAntiRotation, SlotCoreAntiExtension},
	"hips":       {SlotMobilityHipsIRER, SlotMobilityHipFlexors},
}

// SlotTagsFor resolves a template slot id to library slot tags. Ids without a group resolve to themselves when
// they are a known tag and to nothing otherwise.
func SlotTagsFor(slotID string) []SlotTag {
	if tags, ok := slotGroups[slotID]; ok {
		return tags
	}
	if tag := SlotTag(slotID); tag.Valid() {
		return []SlotTag{tag}
	}
	return nil
}

// ValidSlotID reports whether slotID resolves to at least one slot tag.
func ValidSlotID(slotID string) bool {
	return len(SlotTagsFor(slotID)) > 0
}
