package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	IO              Category = "IO"
	Internal        Category = "Internal"
	Mongo           Category = "Mongo"
	Redis           Category = "Redis"
	RabbitMQ        Category = "RabbitMQ"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
	Auth            Category = "Auth"
	Realtime        Category = "Realtime"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	ExternalService SubCategory = "ExternalService"
	Render          SubCategory = "Render"

	// Auth
	Register      SubCategory = "Register"
	Login         SubCategory = "Login"
	Logout        SubCategory = "Logout"
	Session       SubCategory = "Session"
	ProfileUpdate SubCategory = "ProfileUpdate"

	// Realtime
	Connect    SubCategory = "Connect"
	Join       SubCategory = "Join"
	Leave      SubCategory = "Leave"
	Broadcast  SubCategory = "Broadcast"
	Disconnect SubCategory = "Disconnect"

	// Store
	Insert    SubCategory = "Insert"
	Select    SubCategory = "Select"
	Update    SubCategory = "Update"
	Delete    SubCategory = "Delete"
	Migration SubCategory = "Migration"

	// Messaging
	Publish SubCategory = "Publish"
	Consume SubCategory = "Consume"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	HostIp       ExtraKey = "HostIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	BodySize     ExtraKey = "BodySize"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	RequestID    ExtraKey = "RequestID"
	UserID       ExtraKey = "UserID"
	Username     ExtraKey = "Username"
	RoomID       ExtraKey = "RoomID"
	ConnectionID ExtraKey = "ConnectionID"
	ErrorMessage ExtraKey = "ErrorMessage"
)
