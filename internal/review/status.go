// Package review 实现简历录入记录的状态流转规则。
package review

// 简历录入记录的所有状态。
// "Auto" 前缀表示该记录由管理员批量指派产生，而非自由职业者主动认领。
// 指派产生的记录在整个生命周期内保持 Auto 前缀。
const (
	StatusSaved         = "Saved"
	StatusAutoSaved     = "Auto Saved"
	StatusSubmitted     = "Submitted"
	StatusAutoSubmitted = "Auto Submitted"
	StatusRejected      = "Rejected"
)

// Resolve 根据当前状态换算实际写入的新状态。
// 处于 Auto Saved 的记录在保存或提交时保持 Auto 谱系。
func Resolve(current, requested string) string {
	if current == StatusAutoSaved {
		switch requested {
		case StatusSubmitted:
			return StatusAutoSubmitted
		case StatusSaved:
			return StatusAutoSaved
		}
	}
	return requested
}

// IsSubmitted 判断状态是否属于已提交（含指派谱系）。
func IsSubmitted(status string) bool {
	return status == StatusSubmitted || status == StatusAutoSubmitted
}

// IsSaved 判断状态是否属于草稿（含指派谱系）。
func IsSaved(status string) bool {
	return status == StatusSaved || status == StatusAutoSaved
}
