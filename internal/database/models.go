package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Admin 表示管理员账号，通过邮箱登录。
type Admin struct {
	gorm.Model
	Name         string `gorm:"size:128"`
	Email        string `gorm:"uniqueIndex;size:255"`
	PasswordHash string `gorm:"size:255"`
}

// Freelancer 表示录入员账号。UserID 是展示给用户的登录标识
// （三个大写字母 + 六位数字），与自增主键分离。
type Freelancer struct {
	gorm.Model
	UserID         string `gorm:"uniqueIndex;size:16"`
	Name           string `gorm:"size:128"`
	Email          string `gorm:"uniqueIndex;size:255"`
	PhoneNumber    string `gorm:"size:32"`
	AlternatePhone string `gorm:"size:32"`
	PasswordHash   string `gorm:"size:255"`

	DateOfBirth   *datatypes.Date
	Gender        string `gorm:"size:16"`
	Address       string `gorm:"size:512"`
	City          string `gorm:"size:64"`
	State         string `gorm:"size:64"`
	Country       string `gorm:"size:64"`
	Pincode       string `gorm:"size:16"`
	Education     string `gorm:"size:128"`
	Occupation    string `gorm:"size:128"`
	MonthlyIncome string `gorm:"size:32"`

	IsActive   bool `gorm:"default:true"`
	IsApproved bool `gorm:"default:false"`

	// 接单工作窗口：注册当天起 5 天。
	StartDate *datatypes.Date
	EndDate   *datatypes.Date

	JoiningBonus          float64
	TotalEarnings         float64
	TotalResumesCompleted int
	ResumesRejected       int

	// 当前正在处理的简历模板，0 表示尚未指定。
	CurrentResumeID uint
}

// Resume 表示管理员批量上传的简历模板。ObjectKey 是对象存储中的
// 外部引用，不保存文件内容本身。
type Resume struct {
	gorm.Model
	ResumeName string `gorm:"size:255"`
	ObjectKey  string `gorm:"size:512"`
	UploadedBy string `gorm:"size:64"`
}

// SubmittedResume 表示某个录入员针对某个模板的一次填写记录。
// 同一 (freelancer, resume) 可因重新分配产生多行。
type SubmittedResume struct {
	gorm.Model
	ResumeID     uint   `gorm:"index"`
	FreelancerID string `gorm:"index;size:16"`

	// 个人信息
	FirstName      string `gorm:"size:64"`
	MiddleName     string `gorm:"size:64"`
	LastName       string `gorm:"size:64"`
	DateOfBirth    string `gorm:"size:32"`
	Gender         string `gorm:"size:16"`
	Nationality    string `gorm:"size:64"`
	MaritalStatus  string `gorm:"size:32"`
	Passport       string `gorm:"size:32"`
	Hobbies        string `gorm:"size:255"`
	LanguagesKnown string `gorm:"size:255"`
	Address        string `gorm:"size:512"`
	Landmark       string `gorm:"size:128"`
	City           string `gorm:"size:64"`
	State          string `gorm:"size:64"`
	Pincode        string `gorm:"size:16"`
	Mobile         string `gorm:"size:32"`
	Email          string `gorm:"size:255"`

	// 教育经历
	SSCResult                    string `gorm:"size:32"`
	SSCBoard                     string `gorm:"size:128"`
	SSCYearOfPassing             string `gorm:"size:8"`
	HSCResult                    string `gorm:"size:32"`
	HSCBoard                     string `gorm:"size:128"`
	HSCYearOfPassing             string `gorm:"size:8"`
	GraduationDegree             string `gorm:"size:128"`
	GraduationResult             string `gorm:"size:32"`
	GraduationUniversity         string `gorm:"size:128"`
	GraduationYearOfPassing      string `gorm:"size:8"`
	PostGraduationDegree         string `gorm:"size:128"`
	PostGraduationResult         string `gorm:"size:32"`
	PostGraduationUniversity     string `gorm:"size:128"`
	PostGraduationYearOfPassing  string `gorm:"size:8"`
	HigherEducationQualification string `gorm:"size:128"`

	// 工作经历
	TotalWorkExperienceMonths int
	NumberOfCompaniesWorked   int
	LastEmployer              string `gorm:"size:128"`

	// 审核元数据
	Status          string `gorm:"size:32;index"`
	SubmissionDate  time.Time
	AdminFeedback   string `gorm:"size:1024"`
	RejectionReason string `gorm:"size:1024"`
	ResumeEarning   float64
	ApprovalStatus  string `gorm:"size:32"`
	Feedback        string `gorm:"size:1024"`
	EfficiencyScore float64
}

// FreelancerDetail 与 Freelancer 一对一，保存收款信息与证件引用。
type FreelancerDetail struct {
	gorm.Model
	FreelancerID string `gorm:"uniqueIndex;size:16"`

	AccountNumber       string `gorm:"size:32"`
	IFSCCode            string `gorm:"size:16"`
	BankName            string `gorm:"size:128"`
	AccountHolderName   string `gorm:"size:128"`
	AccountType         string `gorm:"size:32"`
	PaymentMobileNumber string `gorm:"size:32"`
	PaymentMethod       string `gorm:"size:32"`

	// 身份证件与地址证件的对象存储引用；驳回时删除并置空。
	DocumentObjectKey     string `gorm:"size:512"`
	IDType                string `gorm:"size:64"`
	AddressProofObjectKey string `gorm:"size:512"`
	AddressType           string `gorm:"size:64"`
	IDRejectReason        string `gorm:"size:1024"`
}

// Wallet 是录入员的收益流水，当前服务只读。
type Wallet struct {
	gorm.Model
	FreelancerID string `gorm:"index;size:16"`
	Amount       float64
	Description  string `gorm:"size:255"`
}
