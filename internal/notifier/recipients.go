package notifier

// NewAssignees 返回 after 中新增、before 中不存在的执行人
func NewAssignees(before, after []string) []string {
	existing := make(map[string]struct{}, len(before))
	for _, id := range before {
		existing[id] = struct{}{}
	}
	var added []string
	for _, id := range dedupe(after) {
		if _, ok := existing[id]; !ok {
			added = append(added, id)
		}
	}
	return added
}

// CommentRecipients 评论通知：全部参与人，排除评论作者
func CommentRecipients(participants []string, authorID string) []string {
	var out []string
	for _, id := range dedupe(participants) {
		if id != authorID {
			out = append(out, id)
		}
	}
	return out
}

// EscalationRecipients 任务受阻或逾期：执行人 + 合同经理 + 区域负责人（去重）
func EscalationRecipients(assignees []string, contractManagerID, regionManagerID *string) []string {
	all := append([]string{}, assignees...)
	if contractManagerID != nil {
		all = append(all, *contractManagerID)
	}
	if regionManagerID != nil {
		all = append(all, *regionManagerID)
	}
	return dedupe(all)
}

// DeadlineRecipients 截止提醒：全部执行人
func DeadlineRecipients(assignees []string) []string {
	return dedupe(assignees)
}

// dedupe 按首次出现顺序去重并丢弃空 ID
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
