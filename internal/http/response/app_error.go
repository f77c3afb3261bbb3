package response

// AppError 携带业务码与错误键的错误包装，Message 为机器可判定的错误键。
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

// Unwrap 保留底层错误供 errors.Is 判定
func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 以业务码与错误键包装底层错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
