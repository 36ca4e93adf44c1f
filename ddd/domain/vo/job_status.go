package vo

// JobStatus 合成作业状态
type JobStatus string

const (
	// JobStatusIdle 排队等待
	JobStatusIdle JobStatus = "idle"
	// JobStatusProbing 探测素材时长
	JobStatusProbing JobStatus = "probing"
	// JobStatusPlanning 生成片段计划与时间线
	JobStatusPlanning JobStatus = "planning"
	// JobStatusMaterializing 逐片段转码
	JobStatusMaterializing JobStatus = "materializing"
	// JobStatusConcatenating 拼接片段
	JobStatusConcatenating JobStatus = "concatenating"
	// JobStatusFinalizing 上传产物、写入会话
	JobStatusFinalizing JobStatus = "finalizing"
	// JobStatusComplete 已完成
	JobStatusComplete JobStatus = "complete"
	// JobStatusError 失败
	JobStatusError JobStatus = "error"
	// JobStatusCancelled 已取消
	JobStatusCancelled JobStatus = "cancelled"
)

// IsValid 检查状态是否有效
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusIdle, JobStatusProbing, JobStatusPlanning, JobStatusMaterializing,
		JobStatusConcatenating, JobStatusFinalizing, JobStatusComplete,
		JobStatusError, JobStatusCancelled:
		return true
	default:
		return false
	}
}

// String 返回状态字符串
func (s JobStatus) String() string {
	return string(s)
}

// IsFinalStatus 检查是否为最终状态
func (s JobStatus) IsFinalStatus() bool {
	return s == JobStatusComplete || s == JobStatusError || s == JobStatusCancelled
}

// CanTransitionTo 检查是否可以转换到目标状态。
// Error和Cancelled可以从任意非终态进入。
func (s JobStatus) CanTransitionTo(target JobStatus) bool {
	if s.IsFinalStatus() {
		return false
	}
	if target == JobStatusError || target == JobStatusCancelled {
		return true
	}
	switch s {
	case JobStatusIdle:
		return target == JobStatusProbing
	case JobStatusProbing:
		return target == JobStatusPlanning
	case JobStatusPlanning:
		return target == JobStatusMaterializing
	case JobStatusMaterializing:
		return target == JobStatusConcatenating
	case JobStatusConcatenating:
		return target == JobStatusFinalizing
	case JobStatusFinalizing:
		return target == JobStatusComplete
	default:
		return false
	}
}
