package models

// Request payloads for the public donor flows. Field names mirror the JSON
// the mobile and web clients already send.

type CreatePlanRequest struct {
	Name        string  `json:"name"`
	PhoneNumber string  `json:"phoneNumber"`
	Amount      float64 `json:"amount"`
	District    string  `json:"district"`
	Panchayat   string  `json:"panchayat"`
	Period      string  `json:"period"`
	Interval    int     `json:"interval"`
}

type CreatePlanResponse struct {
	PlanId string `json:"planId"`
}

type CreateSubscriptionRequest struct {
	PlanId string  `json:"planId"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Phone  string  `json:"phone"`
	Period string  `json:"period"`
}

type CreateSubscriptionResponse struct {
	SubscriptionId string `json:"subscriptionId"`
}

type UpdateSubscriptionStatusRequest struct {
	RazorpaySubscriptionId string `json:"razorpaySubscriptionId"`
	RazorpayPaymentId      string `json:"razorpayPaymentId"`
	RazorpayOrderId        string `json:"razorpayOrderId"`
	RazorpaySignature      string `json:"razorpaySignature"`
	Status                 string `json:"status"`
}

type NewSubscriptionRequest struct {
	Name              string  `json:"name"`
	Phone             string  `json:"phone"`
	Amount            float64 `json:"amount"`
	District          string  `json:"district"`
	Panchayat         string  `json:"panchayat"`
	Period            string  `json:"period"`
	RazorpayPaymentId string  `json:"razorpayPaymentId"`
	RazorpayOrderId   string  `json:"razorpayOrderId"`
	RazorpaySignature string  `json:"razorpaySignature"`
}

type CancelSubscriptionRequest struct {
	SubscriptionId string `json:"subscriptionId"`
}

type CreateOrderRequest struct {
	Amount  float64 `json:"amount"`
	Receipt string  `json:"receipt,omitempty"`
}

type CreateDonationRequest struct {
	DonorId           string  `json:"donorId,omitempty"`
	SubscriptionId    string  `json:"subscriptionId,omitempty"`
	CampaignId        string  `json:"campaignId,omitempty"`
	BoxId             string  `json:"boxId,omitempty"`
	Name              string  `json:"name"`
	Phone             string  `json:"phone"`
	Amount            float64 `json:"amount"`
	Type              string  `json:"type"`
	District          string  `json:"district,omitempty"`
	Panchayat         string  `json:"panchayat,omitempty"`
	PaymentMethod     string  `json:"paymentMethod"`
	RazorpayPaymentId string  `json:"razorpayPaymentId,omitempty"`
	RazorpayOrderId   string  `json:"razorpayOrderId,omitempty"`
	RazorpaySignature string  `json:"razorpaySignature,omitempty"`
}
