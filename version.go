package rcflow

// Version is the released version of the rcflow module.
const Version = "0.4.0"
