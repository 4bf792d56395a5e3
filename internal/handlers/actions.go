package handlers

import "strings"

// Callback data sent by inline keyboards.
const (
	cbDraftPublishNow = "draft:pub_now"
	cbDraftSchedule   = "draft:schedule"
	cbDraftCancel     = "draft:cancel"
	cbLongSplit       = "long:split"
	cbLongNoPhoto     = "long:nophoto"
	cbEditApply       = "edit:apply"
	cbTimePrefix      = "time:"
)

// Entity callbacks are "<kind>:<action>:<id>".
const (
	kindJob  = "job"
	kindPost = "post"

	actView   = "view"
	actEdit   = "edit"
	actMove   = "move"
	actDel    = "del"
	actDelYes = "del_yes"
	actDelNo  = "del_no"
)

func entityData(kind, action, id string) string {
	return kind + ":" + action + ":" + id
}

// parseEntityData splits "<kind>:<action>:<id>". Ids may not contain ':'.
func parseEntityData(data string) (kind, action, id string, ok bool) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 || parts[2] == "" {
		return "", "", "", false
	}
	if parts[0] != kindJob && parts[0] != kindPost {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}
